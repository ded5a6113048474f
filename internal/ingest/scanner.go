package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/common"
)

// FSScanner reads receipts from the local filesystem.
type FSScanner struct {
	prefixes   map[constants.Store]string
	skipHidden bool
	logger     *slog.Logger
}

func NewFSScanner(prefixes map[constants.Store]string, skipHidden bool, logger *slog.Logger) *FSScanner {
	if logger == nil {
		logger = slog.Default()
	}
	if len(prefixes) == 0 {
		prefixes = make(map[constants.Store]string)
		for _, s := range constants.AllStores() {
			prefixes[s] = s.DefaultPrefix()
		}
	}
	return &FSScanner{prefixes: prefixes, skipHidden: skipHidden, logger: logger}
}

// ScanDirectory walks root, skips hidden entries if requested, routes each PDF
// to a store by filename prefix and drops byte-identical copies.
func (s *FSScanner) ScanDirectory(ctx context.Context, root string) ([]ScannedReceipt, []ScanResult, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, nil, stats, common.NewAppError("INVALID_INPUT", "receipts directory is required", common.ErrInvalidInput)
	}
	if fi, err := os.Stat(root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, stats, common.NewAppError("NOT_FOUND", root, common.ErrNotFound)
		}
		return nil, nil, stats, fmt.Errorf("stat %s: %w", root, err)
	} else if !fi.IsDir() {
		return nil, nil, stats, common.NewAppError("INVALID_INPUT", root+" is not a directory", common.ErrInvalidInput)
	}

	start := time.Now()
	seen := make(map[string]string) // sha256 -> first path
	var (
		receipts []ScannedReceipt
		results  []ScanResult
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, ScanResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if path != root && s.skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		store, ok := StoreForFile(path, s.prefixes)
		if !ok {
			s.logger.Debug("scan.skip.no_prefix", "path", path)
			stats.Skipped++
			return nil
		}

		sum, size, err := hashFile(path)
		if err != nil {
			s.logger.Warn("scan.hash.failed", "path", path, "error", err)
			results = append(results, ScanResult{Path: path, Store: store, Err: err.Error()})
			stats.Failed++
			return nil
		}
		if first, dup := seen[sum]; dup {
			s.logger.Info("scan.duplicate", "path", path, "duplicate_of", first)
			results = append(results, ScanResult{Path: path, Store: store, Deduplicated: true, DuplicateOf: first})
			stats.Deduplicated++
			return nil
		}
		seen[sum] = path

		receipts = append(receipts, ScannedReceipt{Path: path, Store: store, SHA256: sum, Size: size})
		results = append(results, ScanResult{Path: path, Store: store})
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return receipts, results, stats, fmt.Errorf("walk: %w", err)
	}

	s.logger.Info("scan.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"receipts", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return receipts, results, stats, nil
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// ForStore returns the receipts routed to store, keeping scan order.
func ForStore(receipts []ScannedReceipt, store constants.Store) []ScannedReceipt {
	var out []ScannedReceipt
	for _, r := range receipts {
		if r.Store == store {
			out = append(out, r)
		}
	}
	return out
}
