package service

import (
	"math"
	"strings"

	"resolver-service/internal/resolve/model"
)

// Options holds the matcher tunables. The combined-score weights and the
// token cutoff are empirically chosen; they are configuration, not inferred.
type Options struct {
	Threshold    int     // minimum fuzzy name score, default 80
	FuzzyCodeMin int     // minimum fuzzy code score, default 85
	TokenCutoff  float64 // minimum token similarity for disambiguation, default 0.5
	FuzzyWeight  float64 // default 0.7
	TokenWeight  float64 // default 0.3
	TopN         int     // fuzzy name candidates considered, default 5
}

// DefaultOptions returns the stock tunables.
func DefaultOptions() Options {
	return Options{
		Threshold:    80,
		FuzzyCodeMin: 85,
		TokenCutoff:  0.5,
		FuzzyWeight:  0.7,
		TokenWeight:  0.3,
		TopN:         5,
	}
}

// Matcher resolves one free-form product reference against the current
// catalog cache generation. It is read-only and safe for concurrent use.
type Matcher struct {
	holder *Holder
	opt    Options
}

func NewMatcher(holder *Holder, opt Options) *Matcher {
	if opt.Threshold <= 0 {
		opt.Threshold = 80
	}
	if opt.FuzzyCodeMin <= 0 {
		opt.FuzzyCodeMin = 85
	}
	if opt.TokenCutoff <= 0 {
		opt.TokenCutoff = 0.5
	}
	if opt.FuzzyWeight <= 0 {
		opt.FuzzyWeight = 0.7
	}
	if opt.TokenWeight <= 0 {
		opt.TokenWeight = 0.3
	}
	if opt.TopN <= 0 {
		opt.TopN = 5
	}
	return &Matcher{holder: holder, opt: opt}
}

// Resolve runs the fixed strategy pipeline. threshold <= 0 falls back to the
// configured default. Strategies advance only on "no candidate found"; the
// first one producing a result wins. There is no error outcome: a failed
// resolution is the zero MatchResult.
func (m *Matcher) Resolve(name, code string, threshold int) model.MatchResult {
	if threshold <= 0 {
		threshold = m.opt.Threshold
	}
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	cache := m.holder.Current()

	// 1) exact code
	if code != "" {
		if entries := cache.ByCode(code); len(entries) > 0 {
			if len(entries) == 1 || name == "" {
				return model.MatchResult{
					Code:   entries[0].Code,
					Name:   entries[0].Name,
					Score:  100,
					Method: model.MethodExactCode,
				}
			}
			best := chooseBestEntry(name, entries)
			return model.MatchResult{
				Code:   best.Code,
				Name:   best.Name,
				Score:  100,
				Method: model.MethodExactCodeDisambiguated,
			}
		}
	}

	// 2) exact name
	if name != "" {
		if codes := cache.ByName(name); len(codes) > 0 {
			if len(codes) == 1 {
				return model.MatchResult{
					Code:   codes[0],
					Name:   name,
					Score:  100,
					Method: model.MethodExactName,
				}
			}
			if c, ok := m.bestCodeByTokens(cache, name, codes); ok {
				return model.MatchResult{
					Code:   c,
					Name:   name,
					Score:  100,
					Method: model.MethodExactNameTokenDisambiguated,
				}
			}
			// no token signal: first code by catalog order
			return model.MatchResult{
				Code:   codes[0],
				Name:   name,
				Score:  100,
				Method: model.MethodExactName,
			}
		}
	}

	// 3) synonym
	if name != "" {
		if syn, ok := cache.BySynonym(name); ok {
			return model.MatchResult{
				Code:   syn.Code,
				Name:   syn.Name,
				Score:  syn.Score,
				Method: model.MethodSynonym,
			}
		}
	}

	// 4) fuzzy code
	if code != "" {
		if best, ok := ExtractBest(code, cache.AllCodes(), Ratio); ok && best.Score >= m.opt.FuzzyCodeMin {
			if entries := cache.ByCode(best.Candidate); len(entries) > 0 {
				return model.MatchResult{
					Code:   entries[0].Code,
					Name:   entries[0].Name,
					Score:  best.Score,
					Method: model.MethodFuzzyCode,
				}
			}
		}
	}

	// 5) fuzzy name with token enhancement
	if name != "" {
		if res, ok := m.fuzzyName(cache, name, threshold); ok {
			return res
		}
	}

	return model.MatchResult{}
}

func (m *Matcher) fuzzyName(cache *Cache, name string, threshold int) (model.MatchResult, bool) {
	top := ExtractTopN(name, cache.AllNames(), m.opt.TopN, TokenSortRatio)

	valid := top[:0]
	for _, t := range top {
		if t.Score >= threshold {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return model.MatchResult{}, false
	}

	winner := valid[0]
	if len(valid) > 1 {
		// combined score: fuzzy weighted against token-set overlap.
		// Ties keep the original fuzzy rank.
		inputTokens := ExtractTokens(name)
		bestCombined := float64(valid[0].Score)
		for _, cand := range valid {
			sim := TokenSimilarity(inputTokens, ExtractTokens(cand.Candidate))
			combined := m.opt.FuzzyWeight*float64(cand.Score) + m.opt.TokenWeight*100*sim
			if combined > bestCombined {
				bestCombined = combined
				winner = Match{Candidate: cand.Candidate, Score: int(math.Round(bestCombined))}
			}
		}
	}

	codes := cache.ByName(winner.Candidate)
	if len(codes) == 0 {
		return model.MatchResult{}, false
	}
	code := codes[0]
	if len(codes) > 1 {
		if c, ok := m.bestCodeByTokens(cache, name, codes); ok {
			code = c
		}
	}
	return model.MatchResult{
		Code:   code,
		Name:   winner.Candidate,
		Score:  winner.Score,
		Method: model.MethodFuzzyNameTokenEnhanced,
	}, true
}

// chooseBestEntry picks the entry whose stored name scores highest against
// the input name (token-sort ratio, first-wins on ties).
func chooseBestEntry(name string, entries []model.CatalogEntry) model.CatalogEntry {
	best := entries[0]
	bestScore := -1
	for _, e := range entries {
		if s := TokenSortRatio(name, e.Name); s > bestScore {
			best = e
			bestScore = s
		}
	}
	return best
}

// bestCodeByTokens disambiguates duplicate-name codes via size/color token
// overlap between the input and each code's stored names. Only a similarity
// above the cutoff counts; otherwise the caller falls back to catalog order.
func (m *Matcher) bestCodeByTokens(cache *Cache, name string, codes []string) (string, bool) {
	inputTokens := ExtractTokens(name)
	if len(inputTokens) == 0 {
		return "", false
	}

	bestCode := ""
	bestScore := 0.0
	for _, code := range codes {
		for _, e := range cache.ByCode(code) {
			if s := TokenSimilarity(inputTokens, ExtractTokens(e.Name)); s > bestScore {
				bestScore = s
				bestCode = code
			}
		}
	}
	if bestScore > m.opt.TokenCutoff {
		return bestCode, true
	}
	return "", false
}
