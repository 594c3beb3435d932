// Package extract turns uploaded files into plain text.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hyperjump/docchat/internal/models"
)

// Result is the text extracted from one file.
type Result struct {
	Text string
	// FileType is the lower-case extension without the dot ("pdf", "docx").
	FileType string
	// Pages is the page count for paginated formats and the sheet count for workbooks.
	Pages int
}

type extractFunc func(content []byte) (*Result, error)

var extractors = map[string]extractFunc{
	".pdf":  extractPDF,
	".docx": extractDOCX,
	".xlsx": extractExcel,
	".txt":  extractPlain,
	".md":   extractPlain,
}

// Extractor extracts plain text from uploaded files, restricted to an allow-list of extensions.
type Extractor struct {
	allowed map[string]bool
}

// NewExtractor returns an Extractor accepting the given extensions (with leading dot). No
// extensions means every format the package understands.
func NewExtractor(extensions ...string) *Extractor {
	allowed := make(map[string]bool, len(extractors))
	if len(extensions) == 0 {
		for ext := range extractors {
			allowed[ext] = true
		}
	}
	for _, ext := range extensions {
		ext = normalizeExt(ext)
		if _, ok := extractors[ext]; ok {
			allowed[ext] = true
		}
	}
	return &Extractor{allowed: allowed}
}

// Supported reports whether files named like filename can be extracted.
func (e *Extractor) Supported(filename string) bool {
	return e.allowed[normalizeExt(filepath.Ext(filename))]
}

// Extract returns the text of content, choosing the format from filename's extension.
// Unknown or disallowed extensions yield models.ErrUnsupportedFileType.
func (e *Extractor) Extract(filename string, content []byte) (*Result, error) {
	ext := normalizeExt(filepath.Ext(filename))
	fn, ok := extractors[ext]
	if !ok || !e.allowed[ext] {
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedFileType, filepath.Ext(filename))
	}
	res, err := fn(content)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	res.FileType = strings.TrimPrefix(ext, ".")
	return res, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
