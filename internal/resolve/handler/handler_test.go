package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolver-service/internal/config"
	"resolver-service/internal/resolve/model"
	"resolver-service/internal/resolve/service"
	"resolver-service/internal/resolve/store"
)

// newBareHandler wires a handler over a catalog snapshot and an empty
// products table, the state of a fresh deployment.
func newBareHandler(t *testing.T) *Handler {
	t.Helper()
	dir := t.TempDir()

	catalog := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(catalog, []byte(
		"Article Number,Product\n"+
			"12345,Rakza 9 Black 2.0mm\n"+
			"12346,Rakza 9 Red 2.0mm\n"+
			"20001,Tenergy 05 Red 2.1mm\n"), 0o644))

	st, err := store.Open(filepath.Join(dir, "resolver.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.Config{
		CatalogCSV: catalog,
		OutputDir:  dir,
		Threshold:  80,
	}
	holder := service.NewHolder()
	matcher := service.NewMatcher(holder, service.DefaultOptions())
	learner := service.NewLearner(st, zerolog.Nop())
	h := New(cfg, zerolog.Nop(), holder, matcher, learner, st)

	_, err = h.RefreshCache()
	require.NoError(t, err)
	return h
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	h := newBareHandler(t)

	require.NoError(t, h.store.AddProduct(model.Product{
		Code: "12345", Name: "Rakza 9 Black 2.0mm", Available: true, Synonyms: []string{"R9 Black"},
	}))
	require.NoError(t, h.store.AddProduct(model.Product{
		Code: "12346", Name: "Rakza 9 Red 2.0mm", Available: false, Discontinued: true,
	}))

	_, err := h.RefreshCache()
	require.NoError(t, err)
	return h
}

func TestHandler_Resolve(t *testing.T) {
	h := newTestHandler(t)

	t.Run("ExactName", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/resolve?name=Rakza+9+Red+2.0mm", nil)
		rec := httptest.NewRecorder()
		h.Resolve(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var res model.MatchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "12346", res.Code)
		assert.Equal(t, model.MethodExactName, res.Method)
	})

	t.Run("StoredSynonym", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/resolve?name=r9+black", nil)
		rec := httptest.NewRecorder()
		h.Resolve(rec, req)

		var res model.MatchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "12345", res.Code)
		assert.Equal(t, model.MethodSynonym, res.Method)
	})

	t.Run("NoMatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/resolve?name=zzz", nil)
		rec := httptest.NewRecorder()
		h.Resolve(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var res model.MatchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.False(t, res.Matched())
	})

	t.Run("MissingParams", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/resolve", nil)
		rec := httptest.NewRecorder()
		h.Resolve(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Health(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status    string            `json:"status"`
		CacheInfo service.CacheInfo `json:"cache_info"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, 3, body.CacheInfo.TotalEntries)
	assert.Equal(t, 1, body.CacheInfo.TotalSynonyms)
}

func TestHandler_Refresh(t *testing.T) {
	h := newTestHandler(t)
	before := h.holder.Current().Version()

	req := httptest.NewRequest(http.MethodPost, "/api/refresh-cache", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before+1, h.holder.Current().Version())
}
