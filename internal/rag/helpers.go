package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/domain/qaModel"
	"github.com/dealbrief/memoapi/internal/metrics"
	"github.com/dealbrief/memoapi/internal/rag/llm"
	"github.com/dealbrief/memoapi/internal/rag/vectorDB"
)

// buildContext renders each retrieved chunk as a provenance-tagged block so
// the model can cite [Document Name, Page X] back at us.
func buildContext(matches []vectorDB.Match) string {
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = fmt.Sprintf("[Document: %s, Page %d]\n%s", m.DocName, m.PageNumber, m.Text)
	}
	return strings.Join(parts, config.ContextJoiner)
}

// collectSources dedupes matches down to one source per (doc_name, page)
// pair. First retrieval rank wins, so ordering tracks relevance.
func collectSources(matches []vectorDB.Match) []qaModel.Source {
	seen := make(map[string]bool)
	sources := make([]qaModel.Source, 0, len(matches))

	for _, m := range matches {
		key := fmt.Sprintf("%s_%d", m.DocName, m.PageNumber)
		if seen[key] {
			continue
		}
		seen[key] = true
		sources = append(sources, qaModel.Source{
			DocName: m.DocName,
			Page:    m.PageNumber,
			Snippet: snippet(m.Text),
		})
	}
	return sources
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) > config.SnippetLength {
		runes = runes[:config.SnippetLength]
	}
	return string(runes) + "..."
}

func joinNames(names []string, cap int) string {
	if len(names) > cap {
		names = names[:cap]
	}
	return strings.Join(names, ", ")
}

func (s *service) executeLLMStep(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Complete(ctx, prompt, false)
}

func (s *service) executeLLMStreamStep(ctx context.Context, prompt string, handler llm.TokenHandler) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.CompleteStream(ctx, prompt, handler)
}
