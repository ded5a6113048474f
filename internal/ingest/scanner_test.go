package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/common"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestStoreForFile(t *testing.T) {
	prefixes := map[constants.Store]string{constants.Costco: "Costco", constants.SamsClub: "SC"}
	tests := []struct {
		path  string
		store constants.Store
		ok    bool
	}{
		{"/r/Costco 9.14.25.pdf", constants.Costco, true},
		{"/r/costco-sept.pdf", constants.Costco, true},
		{"/r/SC 9.3.2025.pdf", constants.SamsClub, true},
		{"/r/sc_order.pdf", constants.SamsClub, true},
		{"/r/Target 9.1.25.pdf", "", false},
		{"/r/Costco/SC 1.1.25.pdf", constants.SamsClub, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := StoreForFile(tt.path, prefixes)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.store, got)
		})
	}
}

func TestStoreForFileLongestPrefix(t *testing.T) {
	prefixes := map[constants.Store]string{constants.Costco: "S", constants.SamsClub: "SC"}
	got, ok := StoreForFile("SC 1.2.25.pdf", prefixes)
	require.True(t, ok)
	assert.Equal(t, constants.SamsClub, got)
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Costco 9.14.25.pdf"), "costco one")
	writeFile(t, filepath.Join(root, "Costco 9.21.25.pdf"), "costco two")
	writeFile(t, filepath.Join(root, "Costco copy.pdf"), "costco one")
	writeFile(t, filepath.Join(root, "SC 9.3.2025.pdf"), "sams")
	writeFile(t, filepath.Join(root, "Target.pdf"), "other")
	writeFile(t, filepath.Join(root, "Costco notes.txt"), "not a pdf")
	writeFile(t, filepath.Join(root, ".hidden", "Costco 1.1.25.pdf"), "hidden")
	writeFile(t, filepath.Join(root, "nested", "SC 9.10.25.PDF"), "nested sams")

	s := NewFSScanner(nil, true, nil)
	receipts, results, stats, err := s.ScanDirectory(context.Background(), root)
	require.NoError(t, err)

	var names []string
	for _, r := range receipts {
		names = append(names, filepath.Base(r.Path))
		assert.Len(t, r.SHA256, 64)
		assert.Positive(t, r.Size)
	}
	assert.Equal(t, []string{"Costco 9.14.25.pdf", "Costco 9.21.25.pdf", "SC 9.3.2025.pdf", "SC 9.10.25.PDF"}, names)

	assert.Equal(t, uint32(6), stats.Matched)
	assert.Equal(t, uint32(4), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Equal(t, uint32(1), stats.Skipped)
	assert.Zero(t, stats.Failed)

	var dup *ScanResult
	for i := range results {
		if results[i].Deduplicated {
			dup = &results[i]
		}
	}
	require.NotNil(t, dup)
	assert.Equal(t, "Costco copy.pdf", filepath.Base(dup.Path))
	assert.Equal(t, "Costco 9.14.25.pdf", filepath.Base(dup.DuplicateOf))

	assert.Len(t, ForStore(receipts, constants.Costco), 2)
	assert.Len(t, ForStore(receipts, constants.SamsClub), 2)
}

func TestScanDirectoryIncludesHiddenWhenAsked(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".hidden", "Costco 1.1.25.pdf"), "hidden")

	receipts, _, _, err := NewFSScanner(nil, false, nil).ScanDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, receipts, 1)
}

func TestScanDirectoryErrors(t *testing.T) {
	s := NewFSScanner(nil, true, nil)

	_, _, _, err := s.ScanDirectory(context.Background(), "  ")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, _, err = s.ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, common.ErrNotFound)

	file := filepath.Join(t.TempDir(), "Costco.pdf")
	writeFile(t, file, "x")
	_, _, _, err = s.ScanDirectory(context.Background(), file)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, _, err = s.ScanDirectory(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
