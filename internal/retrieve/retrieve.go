// Package retrieve selects clean grounding snippets from the vector index
// for question generation and wrong-answer explanations.
package retrieve

import (
	"context"
	"strings"

	"github.com/vialex/vialex/internal/index"
	"github.com/vialex/vialex/internal/noise"
)

// Searcher is the slice of the vector index the retriever depends on.
type Searcher interface {
	Query(ctx context.Context, text string, k int) ([]index.Result, error)
}

const (
	// maxSnippets caps how many clean snippets are kept; one or two solid
	// references bound the prompt size.
	maxSnippets = 2

	// maxSnippetLen truncates each accepted snippet.
	maxSnippetLen = 800
)

// Retriever queries the index and filters candidates through the
// precision-biased noise profile in rank order.
type Retriever struct {
	searcher Searcher
	filter   noise.Filter
}

// New creates a Retriever over the given index.
func New(searcher Searcher) *Retriever {
	return &Retriever{
		searcher: searcher,
		filter:   noise.ForRetrieval(),
	}
}

// Retrieve returns up to two clean snippets for the query joined by a blank
// line, each truncated to a bounded length. No clean candidate yields an
// empty string, not an error; callers define their own fallback.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (string, error) {
	results, err := r.searcher.Query(ctx, query, k)
	if err != nil {
		return "", err
	}

	var snippets []string
	for _, res := range results {
		text := strings.TrimSpace(strings.ReplaceAll(res.Content, "\n", " "))
		if r.filter.IsNoise(text) {
			continue
		}
		snippets = append(snippets, truncate(text, maxSnippetLen))
		if len(snippets) == maxSnippets {
			break
		}
	}

	return strings.Join(snippets, "\n\n"), nil
}

func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
