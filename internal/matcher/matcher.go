// file: internal/matcher/matcher.go
// version: 2.0.0
// guid: 1f2a3b4c-5d6e-7f8a-9b0c-1d2e3f4a5b6c

package matcher

import (
	"errors"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultThreshold is the minimum score accepted as a match.
const DefaultThreshold = 70

// ErrNotFound is returned when no candidate reaches the threshold.
var ErrNotFound = errors.New("no matching title")

// Match is the best candidate for a query.
type Match struct {
	Title string `json:"title"`
	Index int    `json:"index"`
	Score int    `json:"score"`
}

// Matcher resolves free text to catalog titles.
type Matcher struct {
	threshold int
}

// New creates a matcher. A threshold outside 1-100 falls back to DefaultThreshold.
func New(threshold int) *Matcher {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the acceptance threshold
func (m *Matcher) Threshold() int {
	return m.threshold
}

// Resolve returns the highest scoring candidate. When the best score is
// below the threshold the best candidate is still returned alongside
// ErrNotFound so callers can report how close it was; it must not be used
// as a match.
//
// Ties prefer a candidate identical to the query, then one equal ignoring
// case, then the earliest candidate.
func (m *Matcher) Resolve(query string, candidates []string) (Match, error) {
	q := normalize(query)
	if q == "" || len(candidates) == 0 {
		return Match{Index: -1}, ErrNotFound
	}

	best := Match{Index: -1, Score: -1}
	bestLevel := 0
	for i, c := range candidates {
		s := scoreNormalized(q, normalize(c))
		level := exactness(query, c)
		if s > best.Score || (s == best.Score && level > bestLevel) {
			best = Match{Title: c, Index: i, Score: s}
			bestLevel = level
		}
	}

	if best.Score < m.threshold {
		return best, ErrNotFound
	}
	return best, nil
}

// exactness ranks identical strings above case-insensitive equality.
func exactness(query, candidate string) int {
	query, candidate = strings.TrimSpace(query), strings.TrimSpace(candidate)
	switch {
	case query == candidate:
		return 2
	case strings.EqualFold(query, candidate):
		return 1
	default:
		return 0
	}
}

// Suggest returns up to limit "did you mean" titles for a query that did
// not resolve. Subsequence hits come first, ordered by edit distance, then
// the best scored titles fill the remainder.
func (m *Matcher) Suggest(query string, candidates []string, limit int) []string {
	if limit <= 0 || strings.TrimSpace(query) == "" {
		return nil
	}

	seen := make(map[int]bool)
	var out []string

	ranks := fuzzy.RankFindNormalizedFold(strings.TrimSpace(query), candidates)
	sort.Stable(ranks)
	for _, r := range ranks {
		if len(out) == limit {
			return out
		}
		seen[r.OriginalIndex] = true
		out = append(out, r.Target)
	}

	// scored fill-in keeps loosely related titles out
	for _, r := range RankResults(query, candidates, m.threshold/2) {
		if len(out) == limit {
			break
		}
		if seen[r.Index] {
			continue
		}
		seen[r.Index] = true
		out = append(out, candidates[r.Index])
	}
	return out
}
