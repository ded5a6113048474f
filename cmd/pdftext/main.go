package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/common"
	"github.com/joseph-ayodele/receipts-collator/internal/ingest"
	"github.com/joseph-ayodele/receipts-collator/internal/pdftext"
	"github.com/joseph-ayodele/receipts-collator/internal/receipt"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		classify = flag.Bool("classify", false, "prefix each line with its classification")
		items    = flag.Bool("items", false, "also print the assembled line items")
		store    = flag.String("store", "", "store format (default: from the filename prefix)")
		timeout  = flag.Duration("timeout", time.Minute, "extraction timeout")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		printError("usage: pdftext [-classify] [-items] [-store costco|sams_club] <receipt.pdf>\n")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := common.LoadConfig("")
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	logger := common.NewLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	s, ok := ingest.StoreForFile(path, cfg.Prefixes())
	if *store != "" {
		if s, err = constants.ParseStore(*store); err != nil {
			printError("Error: %v\n", err)
			os.Exit(2)
		}
		ok = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := pdftext.FromConfig(cfg.Extract, logger).Extract(ctx, path)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err)
		os.Exit(1)
	}
	for _, w := range res.Warnings {
		logger.Warn("text extraction warning", "path", path, "warning", w)
	}

	classifier := receipt.NewClassifier(receipt.VocabularyFor(s)...)
	for i, page := range res.Pages {
		fmt.Printf("--- page %d/%d (%s)\n", i+1, len(res.Pages), res.Method)
		for _, line := range page {
			if *classify {
				fmt.Printf("%-15s %s\n", classifier.Classify(line), line)
				continue
			}
			fmt.Println(line)
		}
	}

	if *items {
		if !ok {
			printError("Error: cannot tell the store from %q; pass -store\n", path)
			os.Exit(2)
		}
		asm, err := receipt.NewAssembler(s, receipt.WithHeaderTokens(cfg.HeaderExtra(s)...), receipt.WithLogger(logger))
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		records := asm.Assemble(receipt.Document{Path: path, Store: s, Lines: res.Lines()})
		fmt.Printf("--- %d items (%s)\n", len(records), s.DisplayName())
		for _, r := range records {
			fmt.Printf("%-10s %-40s %3d %10s %s\n", r.ItemCode, r.ItemName, r.Quantity, r.TotalPrice.StringFixed(2), r.DateString())
		}
	}

	logger.Info("text extraction OK",
		"path", path,
		"method", res.Method,
		"pages", res.PageCount,
		"lines", len(res.Lines()),
		"duration_ms", res.Duration.Milliseconds(),
	)
}
