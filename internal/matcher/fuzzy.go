// file: internal/matcher/fuzzy.go
// version: 2.0.0
// guid: ce451b37-e8b9-4baf-bd56-95c2cd8dfd00

package matcher

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FuzzyResult holds a scored search result.
type FuzzyResult struct {
	Index int // index into the original slice
	Score int // 0-100, higher is better
}

// Score rates how well query matches target on a 0-100 scale.
//
// It is a weighted ratio: the best of the plain ratio, the token-sort and
// token-set ratios, and (when the lengths differ a lot) their partial,
// best-window variants. Input is case and accent insensitive.
func Score(query, target string) int {
	return scoreNormalized(normalize(query), normalize(target))
}

func scoreNormalized(q, t string) int {
	if q == "" || t == "" {
		return 0
	}
	if q == t {
		return 100
	}

	base := ratio(q, t)

	lq, lt := runeLen(q), runeLen(t)
	lenRatio := float64(max(lq, lt)) / float64(min(lq, lt))

	// unbalanced lengths switch to substring alignment
	if lenRatio >= 1.5 {
		partialScale := 0.9
		if lenRatio >= 8 {
			partialScale = 0.6
		}
		partial := partialRatio(q, t) * partialScale
		partialSort := tokenSortRatio(q, t, partialRatio) * 0.95 * partialScale
		partialSet := tokenSetRatio(q, t, partialRatio) * 0.95 * partialScale
		return round(max(base, partial, partialSort, partialSet))
	}

	sortScore := tokenSortRatio(q, t, ratio) * 0.95
	setScore := tokenSetRatio(q, t, ratio) * 0.95
	return round(max(base, sortScore, setScore))
}

// RankResults scores each candidate against the query and returns results
// sorted by score descending. Only results with score >= minScore are returned.
// Equal scores keep candidate order.
func RankResults(query string, candidates []string, minScore int) []FuzzyResult {
	q := normalize(query)
	var results []FuzzyResult
	for i, c := range candidates {
		s := scoreNormalized(q, normalize(c))
		if s >= minScore {
			results = append(results, FuzzyResult{Index: i, Score: s})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// ratio is the LCS similarity 2*M/T scaled to 0-100.
func ratio(a, b string) float64 {
	total := runeLen(a) + runeLen(b)
	if total == 0 {
		return 0
	}
	return 200 * float64(edlib.LCS(a, b)) / float64(total)
}

// partialRatio slides the shorter string across the longer one and keeps
// the best window.
func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	s := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := ratio(s, string(long[i:i+len(short)]))
		if r > best {
			best = r
			if best >= 100 {
				break
			}
		}
	}
	return best
}

func tokenSortRatio(a, b string, scorer func(string, string) float64) float64 {
	return scorer(sortedTokens(a), sortedTokens(b))
}

// tokenSetRatio compares the shared tokens against each side's full token
// set, so "don" scores high against "don 2".
func tokenSetRatio(a, b string, scorer func(string, string) float64) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	var inter, onlyA, onlyB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter = append(inter, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(inter, " ")
	combA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	return max(scorer(sect, combA), scorer(sect, combB), scorer(combA, combB))
}

func sortedTokens(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.Fields(s) {
		set[f] = struct{}{}
	}
	return set
}

// normalize lowercases, strips accents and punctuation, and collapses
// whitespace.
func normalize(s string) string {
	// chained transformers are stateful, so build one per call
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(folder, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func runeLen(s string) int {
	return len([]rune(s))
}

func round(f float64) int {
	return int(math.Round(f))
}
