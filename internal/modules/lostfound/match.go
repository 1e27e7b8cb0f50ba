// README: Keyword-overlap matcher used when no AI provider is configured.
package lostfound

import (
	"sort"
	"strings"
)

// KeywordMatch ranks candidate descriptions against a query by the number of
// shared words, best first. Candidates with no overlap are omitted.
func KeywordMatch(query string, candidates []string) []int {
	qWords := wordSet(query)
	if len(qWords) == 0 {
		return nil
	}

	type scored struct {
		idx   int
		score int
	}
	var hits []scored
	for i, c := range candidates {
		score := 0
		for w := range wordSet(c) {
			if qWords[w] {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{idx: i, score: score})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].score > hits[b].score
	})

	out := make([]int, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.idx)
	}
	return out
}

// Words shorter than three letters carry no signal for item descriptions.
func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) >= 3 {
			set[w] = true
		}
	}
	return set
}
