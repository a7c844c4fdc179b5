// Package chunker splits extracted page text into overlapping,
// page-attributed segments under a word budget. Chunks are the retrieval
// unit for the vector index.
package chunker

import (
	"strings"

	"github.com/dealbrief/memoapi/internal/domain/docModel"
)

// Split walks pages in order and emits sentence-aligned chunks of at most
// size words. Each chunk is attributed to the page where its buffer opened.
// The last overlap words of a closed chunk seed the next one, so context
// survives the boundary at the cost of some duplication.
//
// The size bound is a soft target: a single sentence longer than size still
// becomes one chunk, never truncated. Blank pages contribute nothing.
func Split(pages []docModel.Page, size int, overlap int) []docModel.Chunk {
	var chunks []docModel.Chunk
	var buffer []string
	bufferPage := 1

	for _, page := range pages {
		for _, sentence := range splitSentences(page.Text) {
			words := strings.Fields(sentence)
			if len(words) == 0 {
				continue
			}

			if len(buffer)+len(words) > size && len(buffer) > 0 {
				chunks = append(chunks, docModel.Chunk{
					Text:       strings.Join(buffer, " "),
					PageNumber: bufferPage,
					Index:      len(chunks),
				})

				seed := overlapWords(buffer, overlap)
				buffer = append(seed, words...)
				bufferPage = page.Number
				continue
			}

			if len(buffer) == 0 {
				bufferPage = page.Number
			}
			buffer = append(buffer, words...)
		}
	}

	if len(buffer) > 0 {
		chunks = append(chunks, docModel.Chunk{
			Text:       strings.Join(buffer, " "),
			PageNumber: bufferPage,
			Index:      len(chunks),
		})
	}

	return chunks
}

// splitSentences normalizes embedded newlines to spaces and splits on the
// ". " boundary, keeping the terminating period on each unit so rejoined
// chunks read as the original text.
func splitSentences(text string) []string {
	normalized := strings.ReplaceAll(text, "\n", " ")
	parts := strings.Split(normalized, ". ")

	sentences := make([]string, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i < len(parts)-1 && !strings.HasSuffix(part, ".") {
			part += "."
		}
		sentences = append(sentences, part)
	}
	return sentences
}

// overlapWords copies the trailing overlap words of a closed buffer. A copy
// is required - the caller appends onto the result.
func overlapWords(buffer []string, overlap int) []string {
	if overlap <= 0 {
		return nil
	}
	start := len(buffer) - overlap
	if start < 0 {
		start = 0
	}
	seed := make([]string, len(buffer)-start)
	copy(seed, buffer[start:])
	return seed
}
