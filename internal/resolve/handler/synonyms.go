package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PendingSynonyms handles GET /api/synonyms/pending.
func (h *Handler) PendingSynonyms(w http.ResponseWriter, r *http.Request) {
	pending := h.learner.ListPending()
	writeJSON(w, http.StatusOK, map[string]any{
		"pending_synonyms": pending,
		"count":            len(pending),
	})
}

type synonymRequest struct {
	Synonym string `json:"synonym"`
	Code    string `json:"article"`
}

func decodeSynonymRequest(w http.ResponseWriter, r *http.Request) (synonymRequest, bool) {
	var req synonymRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return req, false
	}
	if req.Synonym == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "synonym and article are required")
		return req, false
	}
	return req, true
}

// ApproveSynonym handles POST /api/synonyms/approve. On success the cache is
// refreshed so the new synonym takes effect immediately.
func (h *Handler) ApproveSynonym(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSynonymRequest(w, r)
	if !ok {
		return
	}
	if !h.learner.Approve(req.Synonym, req.Code) {
		writeError(w, http.StatusBadRequest, "failed to approve synonym")
		return
	}
	if _, err := h.RefreshCache(); err != nil {
		h.log.Error().Err(err).Msg("cache refresh after synonym approval")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "synonym \"" + req.Synonym + "\" approved for article " + req.Code,
	})
}

// RejectSynonym handles POST /api/synonyms/reject.
func (h *Handler) RejectSynonym(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSynonymRequest(w, r)
	if !ok {
		return
	}
	if !h.learner.Reject(req.Synonym, req.Code) {
		writeError(w, http.StatusNotFound, "no matching pending suggestion")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// SynonymStats handles GET /api/synonyms/stats.
func (h *Handler) SynonymStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.learner.UsageStatistics())
}

// ProductStats handles GET /api/products/stats.
func (h *Handler) ProductStats(w http.ResponseWriter, r *http.Request) {
	most, never, err := h.store.ProductStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"most_matched":  most,
		"never_matched": never,
	})
}

// ProductVersions handles GET /api/products/{code}/versions.
func (h *Handler) ProductVersions(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	versions, err := h.store.VersionHistory(code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}
