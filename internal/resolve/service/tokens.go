package service

import (
	"regexp"
	"strings"
)

// Size tokens: a decimal number followed by "mm", by an inch mark, or alone
// in parentheses. All three normalize to the bare numeric string, so
// `2.0mm`, `(2.0)` and `2.0"` compare equal.
var sizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+\.?\d*)\s*mm`),
	regexp.MustCompile(`(\d+\.?\d*)\s*"`),
	regexp.MustCompile(`\((\d+\.?\d*)\)`),
}

// Closed color vocabulary, matched as case-insensitive substrings.
var colorTokens = []string{
	"black", "red", "blue", "green", "white", "yellow",
	"orange", "purple", "pink", "brown", "grey", "gray",
}

// ExtractTokens pulls normalized size/color tokens out of a product
// description. Used to disambiguate otherwise near-identical variants.
func ExtractTokens(text string) map[string]struct{} {
	tokens := make(map[string]struct{})

	for _, re := range sizePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			tokens[strings.ToLower(m[1])] = struct{}{}
		}
	}

	lower := strings.ToLower(text)
	for _, color := range colorTokens {
		if strings.Contains(lower, color) {
			tokens[color] = struct{}{}
		}
	}

	return tokens
}

// TokenSimilarity is the Jaccard index of two token sets, 0.0 when either
// set is empty.
func TokenSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}
