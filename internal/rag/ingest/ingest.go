// Package ingest turns uploaded files into ordered, 1-indexed pages of
// plain text. PDF extraction is per page; flat formats become one page.
package ingest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

var (
	logger *logger_i.Logger
	once   sync.Once
)

func initLogger() {
	once.Do(func() {
		logger = logger_i.NewLogger("Page Extraction")
	})
}

// ExtractPages parses the file at path into ordered pages. It fails when the
// file type is unsupported or the parser cannot read the file; individual
// unreadable pdf pages are skipped, not fatal.
func ExtractPages(path string) ([]docModel.Page, error) {
	initLogger()

	docType := getDocType(path)
	logger.Debug("Processing document", "path", path, "type", docType)

	switch docType {
	case docModel.PDF:
		return extractPDF(path)
	case docModel.Flat:
		return extractFlat(path)
	default:
		return nil, fmt.Errorf("unsupported content type for %s", path)
	}
}

// ExtractFullText joins all non-blank pages into one string for the
// whole-document analysis prompts.
func ExtractFullText(pages []docModel.Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

// HasText reports whether any page carries non-whitespace content. A scanned
// or image-only pdf extracts to empty pages and must fail the pipeline early.
func HasText(pages []docModel.Page) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}
