package ai

import (
	"context"
)

// DescriptionMatcher ranks candidate item descriptions against a query
// description. The interface allows swapping providers (Gemini, OpenAI, a
// local model) without touching the lost & found service.
type DescriptionMatcher interface {
	// RankMatches returns indices into candidates ordered best-first,
	// restricted to plausible matches; an empty slice means none.
	RankMatches(ctx context.Context, query string, candidates []string) ([]int, error)
}
