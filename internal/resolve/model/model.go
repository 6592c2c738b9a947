package model

import (
	"encoding/json"
	"time"
)

// CatalogEntry is one row of the product catalog snapshot. The same code may
// own several entries (name variants recorded over time), and the same name
// may be mapped to several codes (true catalog duplicates).
type CatalogEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SynonymRecord is a curated alternate text form for a catalog entry.
// Synonyms match exactly (after case folding) and bypass fuzzy scoring.
type SynonymRecord struct {
	Synonym string `json:"synonym"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Score   int    `json:"score"` // always 100 by construction
}

// MatchMethod identifies which resolution strategy produced a match.
type MatchMethod int

const (
	MethodNone MatchMethod = iota
	MethodExactCode
	MethodExactCodeDisambiguated
	MethodExactName
	MethodExactNameTokenDisambiguated
	MethodSynonym
	MethodFuzzyCode
	MethodFuzzyNameTokenEnhanced
)

var methodNames = map[MatchMethod]string{
	MethodExactCode:                   "exact_code",
	MethodExactCodeDisambiguated:      "exact_code_disambiguated",
	MethodExactName:                   "exact_name",
	MethodExactNameTokenDisambiguated: "exact_name_token_disambiguated",
	MethodSynonym:                     "synonym",
	MethodFuzzyCode:                   "fuzzy_code",
	MethodFuzzyNameTokenEnhanced:      "fuzzy_name_token_enhanced",
}

func (m MatchMethod) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return ""
}

func (m MatchMethod) MarshalJSON() ([]byte, error) {
	if m == MethodNone {
		return []byte("null"), nil
	}
	return json.Marshal(m.String())
}

func (m *MatchMethod) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*m = MethodNone
	if s == nil {
		return nil
	}
	for k, v := range methodNames {
		if v == *s {
			*m = k
			return nil
		}
	}
	return nil
}

// MatchResult is the outcome of one resolution call. Absence of a match is a
// valid result: empty code/name, score 0, MethodNone.
type MatchResult struct {
	Code   string      `json:"code,omitempty"`
	Name   string      `json:"name,omitempty"`
	Score  int         `json:"score"`
	Method MatchMethod `json:"method"`
}

// Matched reports whether the result carries an actual catalog match.
func (r MatchResult) Matched() bool { return r.Method != MethodNone }

// SuggestionStatus is the lifecycle state of a synonym suggestion.
type SuggestionStatus string

const (
	StatusPending  SuggestionStatus = "pending"
	StatusApproved SuggestionStatus = "approved"
	StatusRejected SuggestionStatus = "rejected"
)

// SynonymSuggestion is a candidate synonym observed from a strong fuzzy
// match, awaiting operator review.
type SynonymSuggestion struct {
	Synonym     string           `json:"synonym"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Score       int              `json:"score"`
	SuggestedAt time.Time        `json:"suggested_at"`
	Status      SuggestionStatus `json:"status"`
}

// Product is the persisted catalog record, including operator-curated
// synonyms and availability flags.
type Product struct {
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Category     string    `json:"category,omitempty"`
	Available    bool      `json:"is_available"`
	Discontinued bool      `json:"is_discontinued"`
	Synonyms     []string  `json:"synonyms"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
