package chunker

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dealbrief/memoapi/internal/domain/docModel"
)

func TestSplit_SentenceOverlap(t *testing.T) {
	pages := []docModel.Page{{Number: 1, Text: "A. B. C."}}

	chunks := Split(pages, 2, 1)

	if len(chunks) != 2 {
		t.Fatalf("chunk count got %d, want 2", len(chunks))
	}
	if chunks[0].Text != "A. B." {
		t.Errorf("first chunk got %q, want %q", chunks[0].Text, "A. B.")
	}
	if chunks[1].Text != "B. C." {
		t.Errorf("second chunk got %q, want %q", chunks[1].Text, "B. C.")
	}
	for _, c := range chunks {
		if c.PageNumber != 1 {
			t.Errorf("chunk %d page got %d, want 1", c.Index, c.PageNumber)
		}
	}
}

func TestSplit_EmptyAndBlankPages(t *testing.T) {
	tests := []struct {
		name  string
		pages []docModel.Page
	}{
		{"No_Pages", nil},
		{"Empty_Text", []docModel.Page{{Number: 1, Text: ""}}},
		{"Whitespace_Only", []docModel.Page{{Number: 1, Text: "   \n\n  "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if chunks := Split(tt.pages, 500, 100); len(chunks) != 0 {
				t.Errorf("got %d chunks, want 0", len(chunks))
			}
		})
	}
}

func TestSplit_Deterministic(t *testing.T) {
	pages := []docModel.Page{
		{Number: 1, Text: "The company raised two million. Revenue grew fast. Burn is low."},
		{Number: 2, Text: "The founders met at university. They shipped in March."},
	}

	first := Split(pages, 6, 2)
	second := Split(pages, 6, 2)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical input produced different chunk sequences:\n%v\n%v", first, second)
	}
}

func TestSplit_WordBudget(t *testing.T) {
	pages := []docModel.Page{
		{Number: 1, Text: "one two three four five. six seven eight. nine ten."},
	}

	for _, c := range Split(pages, 5, 1) {
		if got := len(strings.Fields(c.Text)); got > 5+1 {
			//budget plus at most one overlap seed per close
			t.Errorf("chunk %d has %d words, budget is 5 (+overlap)", c.Index, got)
		}
	}
}

func TestSplit_OversizedSentence(t *testing.T) {
	long := strings.Repeat("word ", 20) + "end."
	pages := []docModel.Page{{Number: 1, Text: long}}

	chunks := Split(pages, 5, 1)

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 oversized chunk", len(chunks))
	}
	if got := len(strings.Fields(chunks[0].Text)); got != 21 {
		t.Errorf("oversized chunk word count got %d, want 21", got)
	}
}

func TestSplit_PageAttribution(t *testing.T) {
	pages := []docModel.Page{
		{Number: 1, Text: "alpha beta gamma delta."},
		{Number: 2, Text: "epsilon zeta eta theta."},
	}

	chunks := Split(pages, 4, 1)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].PageNumber != 1 || chunks[1].PageNumber != 2 {
		t.Errorf("page attribution got (%d,%d), want (1,2)",
			chunks[0].PageNumber, chunks[1].PageNumber)
	}
}

func TestSplit_OverlapIsPrefixOfNext(t *testing.T) {
	pages := []docModel.Page{
		{Number: 1, Text: "a b c d. e f g h. i j k l. m n o p."},
	}
	overlap := 2

	chunks := Split(pages, 4, overlap)
	if len(chunks) < 2 {
		t.Fatalf("need at least 2 chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Text)
		next := strings.Fields(chunks[i].Text)

		n := overlap
		if n > len(prev) {
			n = len(prev)
		}
		tail := prev[len(prev)-n:]
		if len(next) < n {
			t.Fatalf("chunk %d shorter than overlap", i)
		}
		if !reflect.DeepEqual(tail, next[:n]) {
			t.Errorf("chunk %d tail %v is not a prefix of chunk %d head %v",
				i-1, tail, i, next[:n])
		}
	}
}

func TestSplit_DenseIndices(t *testing.T) {
	pages := []docModel.Page{
		{Number: 1, Text: "a b c. d e f. g h i. j k l."},
	}

	for want, c := range Split(pages, 3, 0) {
		if c.Index != want {
			t.Errorf("chunk index got %d, want %d", c.Index, want)
		}
	}
}
