package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolver-service/internal/resolve/model"
)

func TestApproveSynonym_EndToEnd(t *testing.T) {
	h := newTestHandler(t)

	// a strong fuzzy hit lands in the pending queue
	h.learner.ObserveMatch("Rakza 9 Blck 2.0mm", model.MatchResult{
		Code: "12345", Name: "Rakza 9 Black 2.0mm", Score: 97,
		Method: model.MethodFuzzyNameTokenEnhanced,
	})
	require.Len(t, h.learner.ListPending(), 1)

	body := `{"synonym": "Rakza 9 Blck 2.0mm", "article": "12345"}`
	req := httptest.NewRequest(http.MethodPost, "/api/synonyms/approve", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ApproveSynonym(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Empty(t, h.learner.ListPending())

	// the approved synonym now resolves as an exact synonym hit
	res := h.matcher.Resolve("rakza 9 blck 2.0mm", "", 0)
	assert.Equal(t, "12345", res.Code)
	assert.Equal(t, model.MethodSynonym, res.Method)
	assert.Equal(t, 100, res.Score)
}

func TestApproveSynonym_Invalid(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "BadJSON", body: "{", code: http.StatusBadRequest},
		{name: "MissingFields", body: `{"synonym": "x"}`, code: http.StatusBadRequest},
		{name: "UnknownArticle", body: `{"synonym": "x", "article": "99999"}`, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/synonyms/approve", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ApproveSynonym(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRejectSynonym(t *testing.T) {
	h := newTestHandler(t)
	h.learner.ObserveMatch("Rakza 9 Blck 2.0mm", model.MatchResult{
		Code: "12345", Name: "Rakza 9 Black 2.0mm", Score: 97,
		Method: model.MethodFuzzyNameTokenEnhanced,
	})

	body := `{"synonym": "Rakza 9 Blck 2.0mm", "article": "12345"}`
	req := httptest.NewRequest(http.MethodPost, "/api/synonyms/reject", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.RejectSynonym(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, h.learner.ListPending())

	// nothing left to reject
	req = httptest.NewRequest(http.MethodPost, "/api/synonyms/reject", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.RejectSynonym(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
