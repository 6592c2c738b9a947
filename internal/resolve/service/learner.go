package service

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"resolver-service/internal/resolve/model"
)

// SynonymStore is the narrow persistence surface the learner needs to turn
// an approved suggestion into a stored synonym.
type SynonymStore interface {
	GetProductByCode(code string) (*model.Product, error)
	SaveSynonyms(code string, synonyms []string) error
}

// suggestion score band: a strong fuzzy hit, but not exact.
const (
	suggestMinScore = 85
	suggestMaxScore = 100
)

// SynonymUsage is one synonym with its observed hit count.
type SynonymUsage struct {
	Synonym string `json:"synonym"`
	Count   int    `json:"count"`
}

// UsageStatistics summarizes synonym hits since process start.
type UsageStatistics struct {
	TotalSynonyms int            `json:"total_synonyms"`
	TopUsed       []SynonymUsage `json:"top_used"`
	TotalUsage    int            `json:"total_usage"`
}

// Learner observes matcher outputs, proposes synonyms for strong fuzzy
// matches and tracks usage of existing synonyms. All mutable state sits
// behind one mutex; reads take snapshots under the same lock.
type Learner struct {
	mu      sync.Mutex
	pending []model.SynonymSuggestion
	usage   map[string]int
	store   SynonymStore
	log     zerolog.Logger
}

func NewLearner(store SynonymStore, log zerolog.Logger) *Learner {
	return &Learner{
		usage: make(map[string]int),
		store: store,
		log:   log,
	}
}

// ObserveMatch records bookkeeping for one resolution: synonym hits bump the
// usage counter, strong-but-imperfect fuzzy hits become pending suggestions.
// Creating the same suggestion twice is a no-op.
func (l *Learner) ObserveMatch(inputText string, res model.MatchResult) {
	if inputText == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if res.Method == model.MethodSynonym {
		l.usage[inputText]++
	}

	if res.Score >= suggestMinScore && res.Score < suggestMaxScore && res.Code != "" && res.Name != "" {
		for _, s := range l.pending {
			if s.Synonym == inputText && s.Code == res.Code {
				return
			}
		}
		l.pending = append(l.pending, model.SynonymSuggestion{
			Synonym:     inputText,
			Code:        res.Code,
			Name:        res.Name,
			Score:       res.Score,
			SuggestedAt: time.Now(),
			Status:      model.StatusPending,
		})
		l.log.Info().Str("synonym", inputText).Str("code", res.Code).Int("score", res.Score).
			Msg("synonym suggested")
	}
}

// ListPending returns a snapshot of pending suggestions.
func (l *Learner) ListPending() []model.SynonymSuggestion {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.SynonymSuggestion, len(l.pending))
	copy(out, l.pending)
	return out
}

// Approve merges synonym into the stored product record for code and drops
// matching pending suggestions. Returns false if the code does not exist,
// the synonym is already stored, or persistence fails.
func (l *Learner) Approve(synonym, code string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	product, err := l.store.GetProductByCode(code)
	if err != nil {
		l.log.Error().Err(err).Str("code", code).Msg("approve synonym: load product")
		return false
	}
	if product == nil {
		return false
	}
	for _, s := range product.Synonyms {
		if s == synonym {
			return false
		}
	}
	if err := l.store.SaveSynonyms(code, append(product.Synonyms, synonym)); err != nil {
		l.log.Error().Err(err).Str("code", code).Msg("approve synonym: save")
		return false
	}
	l.removePending(synonym, code)
	l.log.Info().Str("synonym", synonym).Str("code", code).Msg("synonym approved")
	return true
}

// Reject removes matching pending suggestions. Returns true iff at least one
// was removed.
func (l *Learner) Reject(synonym, code string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.removePending(synonym, code) == 0 {
		return false
	}
	l.log.Info().Str("synonym", synonym).Str("code", code).Msg("synonym rejected")
	return true
}

// caller holds l.mu
func (l *Learner) removePending(synonym, code string) int {
	kept := l.pending[:0]
	removed := 0
	for _, s := range l.pending {
		if s.Synonym == synonym && s.Code == code {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	l.pending = kept
	return removed
}

// UsageStatistics reports distinct synonyms used, the top 20 by hit count
// and the overall hit total.
func (l *Learner) UsageStatistics() UsageStatistics {
	l.mu.Lock()
	defer l.mu.Unlock()

	top := make([]SynonymUsage, 0, len(l.usage))
	total := 0
	for s, n := range l.usage {
		top = append(top, SynonymUsage{Synonym: s, Count: n})
		total += n
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Synonym < top[j].Synonym
	})
	if len(top) > 20 {
		top = top[:20]
	}
	return UsageStatistics{
		TotalSynonyms: len(l.usage),
		TopUsed:       top,
		TotalUsage:    total,
	}
}
