package service

import (
	"sort"
	"strings"
)

// Scorer computes a similarity score between two strings in 0..100.
type Scorer func(a, b string) int

// Ratio is a character-level similarity in 0..100: Damerau-Levenshtein
// distance normalized over the combined length of both strings. Symmetric,
// and 100 iff the strings are equal after trimming (integer truncation keeps
// any nonzero distance below 100).
func Ratio(a, b string) int {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	d := damerauLevenshtein(a, b)
	total := len([]rune(a)) + len([]rune(b))
	return (total - d) * 100 / total
}

// tokenSort: lower-case, sort whitespace tokens lexically, rejoin.
// Makes word order irrelevant for TokenSortRatio.
func tokenSort(s string) string {
	f := strings.Fields(strings.ToLower(s))
	sort.Strings(f)
	return strings.Join(f, " ")
}

// TokenSortRatio is Ratio over token-sorted forms of both strings.
func TokenSortRatio(a, b string) int {
	return Ratio(tokenSort(a), tokenSort(b))
}

// Match pairs a candidate string with its score against a query.
type Match struct {
	Candidate string `json:"candidate"`
	Score     int    `json:"score"`
}

// ExtractBest returns the highest-scoring candidate for query. Ties keep the
// first occurrence in the candidate sequence. ok is false for an empty
// candidate list.
func ExtractBest(query string, candidates []string, scorer Scorer) (Match, bool) {
	var best Match
	found := false
	for _, c := range candidates {
		s := scorer(query, c)
		if !found || s > best.Score {
			best = Match{Candidate: c, Score: s}
			found = true
		}
	}
	return best, found
}

// ExtractTopN returns up to n candidates ordered by descending score.
// Candidates with equal scores keep their input order.
func ExtractTopN(query string, candidates []string, n int, scorer Scorer) []Match {
	if n <= 0 {
		return nil
	}
	out := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Match{Candidate: c, Score: scorer(query, c)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
