package ingest

import (
	"path/filepath"
	"strings"

	"github.com/dealbrief/memoapi/internal/domain/docModel"
)

func getDocType(docPath string) docModel.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return docModel.PDF
	case ".docx", ".txt", ".rtf":
		return docModel.Flat
	default:
		return docModel.ERR
	}
}
