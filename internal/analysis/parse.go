package analysis

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/dealbrief/memoapi/internal/domain/analysisModel"
)

var errUnrecognizedShape = errors.New("unrecognized FAQ payload shape")

// faqWrapperKeys are the object keys models wrap the list in when they
// ignore the bare-array instruction, tried in order.
var faqWrapperKeys = []string{"faqs", "questions", "items"}

// decodeExtraction parses a JSON-mode completion into the structured
// record. The payload tags line up with the prompt's requested shape, so a
// plain unmarshal does the work; unknown keys are ignored.
func decodeExtraction(docId string, raw string) (analysisModel.ExtractionResult, error) {
	var result analysisModel.ExtractionResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &result); err != nil {
		return analysisModel.ExtractionResult{}, err
	}
	result.DocId = docId
	return result, nil
}

// decodeFAQItems tolerates the shapes models actually return for "a JSON
// array of question/answer pairs": a bare list, an object wrapping the list
// under a known key, or a single record. Entries missing a question are
// discarded; the shape is an error only when nothing salvageable remains.
func decodeFAQItems(raw string) ([]analysisModel.FAQItem, error) {
	trimmed := strings.TrimSpace(raw)

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &elements); err == nil {
		return collectItems(elements)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &wrapper); err != nil {
		return nil, errUnrecognizedShape
	}

	for _, key := range faqWrapperKeys {
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &elements); err == nil {
			return collectItems(elements)
		}
	}

	// no known wrapper key - maybe the object is itself one record
	var single analysisModel.FAQItem
	if err := json.Unmarshal([]byte(trimmed), &single); err == nil && single.Question != "" {
		return []analysisModel.FAQItem{single}, nil
	}

	return nil, errUnrecognizedShape
}

func collectItems(elements []json.RawMessage) ([]analysisModel.FAQItem, error) {
	items := make([]analysisModel.FAQItem, 0, len(elements))
	for _, el := range elements {
		var item analysisModel.FAQItem
		if err := json.Unmarshal(el, &item); err != nil {
			continue
		}
		if item.Question == "" {
			continue
		}
		items = append(items, item)
	}
	// an empty list is a valid answer; error only when the list had entries
	// and none survived
	if len(items) == 0 && len(elements) > 0 {
		return nil, errUnrecognizedShape
	}
	return items, nil
}
