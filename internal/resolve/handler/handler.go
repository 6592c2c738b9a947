// Package handler wires the resolution engine, the catalog store and the
// order ingestion glue to the HTTP surface.
package handler

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"resolver-service/internal/config"
	"resolver-service/internal/fileio"
	"resolver-service/internal/resolve/service"
	"resolver-service/internal/resolve/store"
)

type Handler struct {
	cfg     config.Config
	log     zerolog.Logger
	holder  *service.Holder
	matcher *service.Matcher
	learner *service.Learner
	store   *store.Store
}

func New(cfg config.Config, log zerolog.Logger, holder *service.Holder,
	matcher *service.Matcher, learner *service.Learner, st *store.Store) *Handler {
	return &Handler{
		cfg:     cfg,
		log:     log,
		holder:  holder,
		matcher: matcher,
		learner: learner,
		store:   st,
	}
}

// RefreshCache reloads the catalog snapshot and stored synonyms and swaps in
// a new cache generation.
func (h *Handler) RefreshCache() (service.CacheInfo, error) {
	entries, err := fileio.ReadCatalogCSV(h.cfg.CatalogCSV)
	if err != nil {
		return service.CacheInfo{}, err
	}
	synonyms, err := h.store.SynonymRecords()
	if err != nil {
		return service.CacheInfo{}, err
	}
	cache := h.holder.Refresh(entries, synonyms)
	info := cache.Info()
	h.log.Info().
		Int64("version", info.Version).
		Int("entries", info.TotalEntries).
		Int("synonyms", info.TotalSynonyms).
		Msg("catalog cache refreshed")
	return info, nil
}

// Health reports service status and current cache generation info.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"cache_info": h.holder.Current().Info(),
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}

// Refresh handles POST /api/refresh-cache.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	info, err := h.RefreshCache()
	if err != nil {
		h.log.Error().Err(err).Msg("cache refresh failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"cache_info": info,
	})
}

// Resolve handles GET /api/resolve?name=...&code=...&threshold=80, the
// single-reference entry point.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if name == "" && code == "" {
		writeError(w, http.StatusBadRequest, "name or code is required")
		return
	}
	threshold := 0
	if t := r.URL.Query().Get("threshold"); t != "" {
		threshold, _ = strconv.Atoi(t)
	}

	res := h.matcher.Resolve(name, code, threshold)
	h.learner.ObserveMatch(firstNonEmpty(name, code), res)
	writeJSON(w, http.StatusOK, res)
}

// Download serves a generated output file by name.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(chi.URLParam(r, "filename"))
	path := filepath.Join(h.cfg.OutputDir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(name))
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
