package constants

import "strings"

const (
	IntermediateSuffix = "_items.csv"
	CollatedSuffix     = "_collated.csv"
	CollatedXLSXSuffix = "_collated.xlsx"
)

// AllowedExtensions holds the file extensions picked up by the receipt scanner.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IntermediateFile is the parse-stage output name for a store.
func IntermediateFile(s Store) string { return s.FileStem() + IntermediateSuffix }

// CollatedFile is the collate-stage CSV output name for a store.
func CollatedFile(s Store) string { return s.FileStem() + CollatedSuffix }

func CollatedXLSXFile(s Store) string { return s.FileStem() + CollatedXLSXSuffix }
