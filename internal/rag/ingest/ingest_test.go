package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dealbrief/memoapi/internal/domain/docModel"
)

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected docModel.DocType
	}{
		{"memo.pdf", docModel.PDF},
		{"MEMO.PDF", docModel.PDF},
		{"DECK.DOCX", docModel.Flat},
		{"notes.txt", docModel.Flat},
		{"old.rtf", docModel.Flat},
		{"image.png", docModel.ERR},
		{"noextension", docModel.ERR},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestExtractPages_FlatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.txt")
	if err := os.WriteFile(path, []byte("The company raised two million."), 0644); err != nil {
		t.Fatal(err)
	}

	pages, err := ExtractPages(path)
	if err != nil {
		t.Fatalf("ExtractPages failed: %v", err)
	}

	if len(pages) != 1 || pages[0].Number != 1 {
		t.Fatalf("flat file should produce one page numbered 1, got %+v", pages)
	}
	if pages[0].Text != "The company raised two million." {
		t.Errorf("page text got %q", pages[0].Text)
	}
}

func TestExtractPages_UnsupportedType(t *testing.T) {
	if _, err := ExtractPages("upload.png"); err == nil {
		t.Error("expected error for unsupported extension, got nil")
	}
}

func TestExtractFullText(t *testing.T) {
	pages := []docModel.Page{
		{Number: 1, Text: "Revenue grew fast."},
		{Number: 2, Text: "   \n"},
		{Number: 3, Text: "Churn stayed low."},
	}

	text := ExtractFullText(pages)
	if text != "Revenue grew fast.\n\nChurn stayed low." {
		t.Errorf("full text got %q", text)
	}
}

func TestHasText(t *testing.T) {
	tests := []struct {
		name     string
		pages    []docModel.Page
		expected bool
	}{
		{"Nil_Pages", nil, false},
		{"Blank_Pages", []docModel.Page{{Number: 1, Text: "  \n "}}, false},
		{"Text_On_Later_Page", []docModel.Page{{Number: 1, Text: ""}, {Number: 2, Text: "traction"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasText(tt.pages); got != tt.expected {
				t.Errorf("HasText = %v; want %v", got, tt.expected)
			}
		})
	}
}
