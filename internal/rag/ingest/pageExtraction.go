package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/dealbrief/memoapi/internal/domain/docModel"
)

func extractPDF(path string) ([]docModel.Page, error) {
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening of pdf file", "path", path)
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []docModel.Page
	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// Log warning but continue with other pages
			logger.Error("Error parsing page content", "page", i, "Error", err)
			continue
		}

		pages = append(pages, docModel.Page{
			Number: i,
			Text:   content,
		})
	}
	return pages, nil
}

// extractFlat reads a .docx, .rtf or plaintext file. These formats carry no
// page boundaries, so the whole body lands on page 1.
func extractFlat(path string) ([]docModel.Page, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from doc", "path", path)
		return nil, fmt.Errorf("failed to extract document: %w", err)
	}

	return []docModel.Page{
		{
			Number: 1,
			Text:   text,
		},
	}, nil
}

// protectExtract guards against pdf pages that hang the parser.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		logger.Error("pageExtract", "timeout", true)
		return "", errors.New("timeout")
	}
}
