package service_test

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolver-service/internal/resolve/model"
	"resolver-service/internal/resolve/service"
)

type fakeSynonymStore struct {
	products map[string]*model.Product
	saved    map[string][]string
	saveErr  error
}

func newFakeSynonymStore() *fakeSynonymStore {
	return &fakeSynonymStore{
		products: make(map[string]*model.Product),
		saved:    make(map[string][]string),
	}
}

func (f *fakeSynonymStore) GetProductByCode(code string) (*model.Product, error) {
	return f.products[code], nil
}

func (f *fakeSynonymStore) SaveSynonyms(code string, synonyms []string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[code] = synonyms
	return nil
}

func fuzzyResult(code, name string, score int) model.MatchResult {
	return model.MatchResult{Code: code, Name: name, Score: score, Method: model.MethodFuzzyNameTokenEnhanced}
}

func TestLearner_ObserveMatch_SuggestionBand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		res     model.MatchResult
		pending int
	}{
		{name: "InsideBand", input: "Rakza 9 Blck 2.0mm", res: fuzzyResult("12345", "Rakza 9 Black 2.0mm", 92), pending: 1},
		{name: "BandLowerEdge", input: "x", res: fuzzyResult("12345", "Rakza 9 Black 2.0mm", 85), pending: 1},
		{name: "BelowBand", input: "x", res: fuzzyResult("12345", "Rakza 9 Black 2.0mm", 84), pending: 0},
		{name: "ExactExcluded", input: "x", res: fuzzyResult("12345", "Rakza 9 Black 2.0mm", 100), pending: 0},
		{name: "EmptyInput", input: "", res: fuzzyResult("12345", "Rakza 9 Black 2.0mm", 92), pending: 0},
		{name: "NoCode", input: "x", res: model.MatchResult{Score: 92}, pending: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := service.NewLearner(newFakeSynonymStore(), zerolog.Nop())
			l.ObserveMatch(tt.input, tt.res)
			assert.Len(t, l.ListPending(), tt.pending)
		})
	}
}

func TestLearner_ObserveMatch_Idempotent(t *testing.T) {
	l := service.NewLearner(newFakeSynonymStore(), zerolog.Nop())
	res := fuzzyResult("12345", "Rakza 9 Black 2.0mm", 92)

	l.ObserveMatch("Rakza 9 Blck", res)
	l.ObserveMatch("Rakza 9 Blck", res)
	l.ObserveMatch("Rakza 9 Blck", res)

	pending := l.ListPending()
	require.Len(t, pending, 1)
	assert.Equal(t, "Rakza 9 Blck", pending[0].Synonym)
	assert.Equal(t, "12345", pending[0].Code)
	assert.Equal(t, model.StatusPending, pending[0].Status)
}

func TestLearner_Approve(t *testing.T) {
	store := newFakeSynonymStore()
	store.products["12345"] = &model.Product{
		Code:     "12345",
		Name:     "Rakza 9 Black 2.0mm",
		Synonyms: []string{"R9B"},
	}
	l := service.NewLearner(store, zerolog.Nop())
	l.ObserveMatch("Rakza 9 Blck", fuzzyResult("12345", "Rakza 9 Black 2.0mm", 92))

	t.Run("UnknownCode", func(t *testing.T) {
		assert.False(t, l.Approve("Rakza 9 Blck", "99999"))
	})

	t.Run("AlreadyStored", func(t *testing.T) {
		assert.False(t, l.Approve("R9B", "12345"))
	})

	t.Run("PersistError", func(t *testing.T) {
		store.saveErr = errors.New("disk full")
		assert.False(t, l.Approve("Rakza 9 Blck", "12345"))
		assert.Len(t, l.ListPending(), 1, "failed approval keeps the suggestion")
		store.saveErr = nil
	})

	t.Run("Success", func(t *testing.T) {
		require.True(t, l.Approve("Rakza 9 Blck", "12345"))
		assert.Equal(t, []string{"R9B", "Rakza 9 Blck"}, store.saved["12345"])
		assert.Empty(t, l.ListPending())
	})
}

func TestLearner_Reject(t *testing.T) {
	l := service.NewLearner(newFakeSynonymStore(), zerolog.Nop())
	l.ObserveMatch("Rakza 9 Blck", fuzzyResult("12345", "Rakza 9 Black 2.0mm", 92))

	assert.False(t, l.Reject("Rakza 9 Blck", "99999"), "code must match the suggestion")
	assert.True(t, l.Reject("Rakza 9 Blck", "12345"))
	assert.Empty(t, l.ListPending())
	assert.False(t, l.Reject("Rakza 9 Blck", "12345"), "second reject has nothing to remove")
}

func TestLearner_UsageStatistics(t *testing.T) {
	l := service.NewLearner(newFakeSynonymStore(), zerolog.Nop())
	syn := func(code, name string) model.MatchResult {
		return model.MatchResult{Code: code, Name: name, Score: 100, Method: model.MethodSynonym}
	}

	l.ObserveMatch("r9 black", syn("12345", "Rakza 9 Black 2.0mm"))
	l.ObserveMatch("r9 black", syn("12345", "Rakza 9 Black 2.0mm"))
	l.ObserveMatch("t05", syn("20001", "Tenergy 05 Red 2.1mm"))
	// a fuzzy hit does not count as synonym usage
	l.ObserveMatch("rakza 9 blck", fuzzyResult("12345", "Rakza 9 Black 2.0mm", 92))

	stats := l.UsageStatistics()
	assert.Equal(t, 2, stats.TotalSynonyms)
	assert.Equal(t, 3, stats.TotalUsage)
	require.Len(t, stats.TopUsed, 2)
	assert.Equal(t, service.SynonymUsage{Synonym: "r9 black", Count: 2}, stats.TopUsed[0])
	assert.Equal(t, service.SynonymUsage{Synonym: "t05", Count: 1}, stats.TopUsed[1])
}
