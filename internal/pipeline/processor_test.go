package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/collate"
	"github.com/joseph-ayodele/receipts-collator/internal/common"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
	"github.com/joseph-ayodele/receipts-collator/internal/export"
	"github.com/joseph-ayodele/receipts-collator/internal/extract"
	"github.com/joseph-ayodele/receipts-collator/internal/ingest"
	"github.com/joseph-ayodele/receipts-collator/internal/metrics"
	"github.com/joseph-ayodele/receipts-collator/internal/pdftext"
	"github.com/joseph-ayodele/receipts-collator/internal/receipt"
)

// fakeText serves canned lines by file base name.
type fakeText struct {
	mu    sync.Mutex
	lines map[string][]string
	fail  map[string]error
	delay map[string]time.Duration
	calls int
}

func (f *fakeText) Extract(ctx context.Context, path string) (pdftext.Result, error) {
	f.mu.Lock()
	f.calls++
	base := filepath.Base(path)
	d := f.delay[base]
	err := f.fail[base]
	lines := f.lines[base]
	f.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return pdftext.Result{}, common.ExtractionError(path, ctx.Err())
		}
	}
	if err != nil {
		return pdftext.Result{}, common.ExtractionError(path, err)
	}
	return pdftext.Result{Pages: [][]string{lines}, PageCount: 1, Method: pdftext.MethodPdftotext}, nil
}

// fakeRecords returns one record per line, named after the line.
type fakeRecords struct{}

func (fakeRecords) ExtractRecords(doc receipt.Document) ([]entity.ItemRecord, error) {
	out := make([]entity.ItemRecord, 0, len(doc.Lines))
	for i, l := range doc.Lines {
		r := entity.NewItemRecord(doc.Store, fmt.Sprintf("%d", i), l, 1, decimal.NewFromInt(int64(i+1)))
		r.SourcePath = doc.Path
		out = append(out, r)
	}
	return out, nil
}

func scanned(store constants.Store, names ...string) []ingest.ScannedReceipt {
	out := make([]ingest.ScannedReceipt, 0, len(names))
	for _, n := range names {
		out = append(out, ingest.ScannedReceipt{Path: "/r/" + n, Store: store})
	}
	return out
}

func TestParseStageIsolatesFailures(t *testing.T) {
	text := &fakeText{
		lines: map[string][]string{"a.pdf": {"APPLES"}, "c.pdf": {"CHERRIES", "CREAM"}},
		fail:  map[string]error{"b.pdf": errors.New("malformed xref")},
	}
	m := metrics.NewRecorder()
	stage := NewParseStage(nil, ParseConfig{Workers: 2}, text, fakeRecords{}, m)

	report, err := stage.Run(context.Background(), scanned(constants.Costco, "a.pdf", "b.pdf", "c.pdf"))
	require.NoError(t, err)
	require.Len(t, report.Documents, 3)

	assert.NoError(t, report.Documents[0].Err)
	require.Error(t, report.Documents[1].Err)
	assert.ErrorIs(t, report.Documents[1].Err, common.ErrExtraction)
	assert.Empty(t, report.Documents[1].Records)
	assert.Equal(t, 1, report.Failed())

	var names []string
	for _, r := range report.Records(constants.Costco) {
		names = append(names, r.ItemName)
	}
	assert.Equal(t, []string{"APPLES", "CHERRIES", "CREAM"}, names)
	assert.Equal(t, []constants.Store{constants.Costco}, report.Stores)
}

func TestParseStageWorkerCountDoesNotChangeOutput(t *testing.T) {
	var receipts []ingest.ScannedReceipt
	text := &fakeText{lines: map[string][]string{}, delay: map[string]time.Duration{}}
	for i := range 24 {
		name := fmt.Sprintf("doc%02d.pdf", i)
		store := constants.Costco
		if i%3 == 0 {
			store = constants.SamsClub
		}
		receipts = append(receipts, ingest.ScannedReceipt{Path: "/r/" + name, Store: store})
		text.lines[name] = []string{fmt.Sprintf("ITEM %d", i%5), fmt.Sprintf("OTHER %d", i)}
		text.delay[name] = time.Duration((24-i)%7) * time.Millisecond
	}

	run := func(workers int) map[constants.Store][]entity.CollatedRow {
		stage := NewParseStage(nil, ParseConfig{Workers: workers}, text, fakeRecords{}, nil)
		report, err := stage.Run(context.Background(), receipts)
		require.NoError(t, err)
		out := make(map[constants.Store][]entity.CollatedRow)
		for _, s := range report.Stores {
			res, err := collate.New(s).Collate(context.Background(), report.Records(s))
			require.NoError(t, err)
			out[s] = res.Rows
		}
		return out
	}

	sequential := run(1)
	parallel := run(8)
	require.Len(t, sequential, 2)
	for s, rows := range sequential {
		require.Len(t, parallel[s], len(rows))
		for i := range rows {
			assert.Equal(t, rows[i].Item, parallel[s][i].Item)
			assert.Equal(t, rows[i].Quantity, parallel[s][i].Quantity)
			assert.True(t, rows[i].TotalCost.Equal(parallel[s][i].TotalCost))
		}
	}
}

func TestParseStageDocumentTimeout(t *testing.T) {
	text := &fakeText{
		lines: map[string][]string{"fast.pdf": {"MILK"}, "slow.pdf": {"BREAD"}},
		delay: map[string]time.Duration{"slow.pdf": time.Second},
	}
	stage := NewParseStage(nil, ParseConfig{Workers: 2, DocumentTimeout: 20 * time.Millisecond}, text, fakeRecords{}, nil)

	report, err := stage.Run(context.Background(), scanned(constants.Costco, "fast.pdf", "slow.pdf"))
	require.NoError(t, err)
	assert.NoError(t, report.Documents[0].Err)
	assert.ErrorIs(t, report.Documents[1].Err, context.DeadlineExceeded)
}

func TestParseStageCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stage := NewParseStage(nil, ParseConfig{}, &fakeText{}, fakeRecords{}, nil)
	_, err := stage.Run(ctx, scanned(constants.Costco, "a.pdf"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollateStageMissingInputIsPerStore(t *testing.T) {
	dir := t.TempDir()
	costcoIn := filepath.Join(dir, constants.IntermediateFile(constants.Costco))
	require.NoError(t, export.WriteIntermediateFile(costcoIn, []entity.ItemRecord{
		entity.NewItemRecord(constants.Costco, "1", "MILK", 1, decimal.RequireFromString("3.49")),
	}))

	stage := NewCollateStage(nil, CollateConfig{OutputDir: dir, WriteXLSX: true, Currency: "USD"}, nil, nil)
	report, err := stage.Run(context.Background(), []constants.Store{constants.Costco, constants.SamsClub})
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 2)

	costco := report.Outcomes[0]
	require.NoError(t, costco.Err)
	assert.FileExists(t, costco.CSVPath)
	assert.FileExists(t, costco.XLSXPath)
	require.NotNil(t, costco.Result)
	assert.Len(t, costco.Result.Rows, 1)

	sams := report.Outcomes[1]
	assert.ErrorIs(t, sams.Err, common.ErrMissingInput)
	assert.Nil(t, sams.Result)
	assert.NoFileExists(t, filepath.Join(dir, constants.CollatedFile(constants.SamsClub)))

	assert.ErrorIs(t, report.Err(), common.ErrMissingInput)
}

func TestProcessorRun(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	for _, name := range []string{"Costco 9.14.25.pdf", "SC 9.3.2025.pdf", "notes.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(name), 0o644))
	}
	text := &fakeText{
		lines: map[string][]string{
			"Costco 9.14.25.pdf": {
				"COSTCO WHOLESALE",
				"KIRKLAND BATH",
				"E 1234567 18.99 Y",
				"E 782796 ***KSWTR40PK 11.97 Y",
				"E 555 2 x Widget 10.00 N",
				"SUBTOTAL 40.96",
			},
		},
		fail: map[string]error{"SC 9.3.2025.pdf": errors.New("encrypted")},
	}
	records, err := extract.NewAssemblerAdapter(nil, nil)
	require.NoError(t, err)

	p := NewProcessor(nil,
		ingest.NewFSScanner(nil, true, nil),
		NewParseStage(nil, ParseConfig{Workers: 2, OutputDir: out}, text, records, nil),
		NewCollateStage(nil, CollateConfig{OutputDir: out}, nil, nil),
	)
	summary, report, err := p.Run(context.Background(), root, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, uint32(2), summary.Stats.Succeeded)
	assert.Equal(t, uint32(1), summary.Stats.Skipped)
	assert.Equal(t, 1, summary.Report.Failed())
	assert.Len(t, summary.Intermediate, 2)
	require.NoError(t, report.Err())

	raw, err := os.ReadFile(filepath.Join(out, constants.IntermediateFile(constants.Costco)))
	require.NoError(t, err)
	assert.Equal(t,
		"item_code,item,unit_number,date,cost\n"+
			"1234567,KIRKLAND BATH,1,2025-09-14,18.99\n"+
			"782796,***KSWTR40PK,1,2025-09-14,11.97\n"+
			"555,Widget,2,2025-09-14,10.00\n",
		string(raw))

	raw, err = os.ReadFile(filepath.Join(out, constants.CollatedFile(constants.Costco)))
	require.NoError(t, err)
	assert.Equal(t,
		"item,quantity,total_cost\n"+
			"KIRKLAND BATH,2,18.99\n"+
			"***KSWTR40PK,1,11.97\n"+
			"Widget,2,10.00\n",
		string(raw))

	raw, err = os.ReadFile(filepath.Join(out, constants.CollatedFile(constants.SamsClub)))
	require.NoError(t, err)
	assert.Equal(t, "item,quantity,total_cost\n", string(raw))
}

func TestProcessorStoreFilter(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	for _, name := range []string{"Costco 9.14.25.pdf", "SC 9.3.2025.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(name), 0o644))
	}
	text := &fakeText{lines: map[string][]string{}}
	p := NewProcessor(nil,
		ingest.NewFSScanner(nil, true, nil),
		NewParseStage(nil, ParseConfig{OutputDir: out}, text, fakeRecords{}, nil),
		nil,
	)
	summary, err := p.ParseDirectory(context.Background(), root, []constants.Store{constants.SamsClub})
	require.NoError(t, err)
	assert.Equal(t, []constants.Store{constants.SamsClub}, summary.Report.Stores)
	assert.Equal(t, 1, text.calls)
	assert.NoFileExists(t, filepath.Join(out, constants.IntermediateFile(constants.Costco)))
}
