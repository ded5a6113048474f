package extract

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
	"github.com/joseph-ayodele/receipts-collator/internal/receipt"
)

// AssemblerAdapter routes each document to its store's assembler.
type AssemblerAdapter struct {
	assemblers map[constants.Store]*receipt.Assembler
}

// NewAssemblerAdapter builds one assembler per supported store. headerExtra
// adds store-specific header tokens on top of the built-in ones.
func NewAssemblerAdapter(headerExtra map[constants.Store][]string, logger *slog.Logger) (*AssemblerAdapter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &AssemblerAdapter{assemblers: make(map[constants.Store]*receipt.Assembler)}
	for _, s := range constants.AllStores() {
		asm, err := receipt.NewAssembler(s,
			receipt.WithHeaderTokens(headerExtra[s]...),
			receipt.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		a.assemblers[s] = asm
	}
	return a, nil
}

func (a *AssemblerAdapter) ExtractRecords(doc receipt.Document) ([]entity.ItemRecord, error) {
	asm, ok := a.assemblers[doc.Store]
	if !ok {
		return nil, fmt.Errorf("no assembler for store %q", doc.Store)
	}
	return asm.Assemble(doc), nil
}
