package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"resolver-service/internal/resolve/model"
	"resolver-service/internal/resolve/store"
)

// productRequest carries the product mutation endpoints' JSON body. Pointer
// fields distinguish "absent" from zero on partial updates.
type productRequest struct {
	Code         string   `json:"article_number"`
	Name         *string  `json:"product_name"`
	Category     *string  `json:"category"`
	Available    *bool    `json:"is_available"`
	Discontinued *bool    `json:"is_discontinued"`
	Synonyms     []string `json:"synonyms"`
	Reason       string   `json:"reason"`
	ChangedBy    string   `json:"changed_by"`
}

// Products handles GET /api/products.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"count":    len(products),
	})
}

// AddProduct handles POST /api/products: persists the product, appends it to
// the catalog snapshot and refreshes the cache so it resolves immediately.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if req.Code == "" || req.Name == nil || *req.Name == "" {
		writeError(w, http.StatusBadRequest, "article_number and product_name are required")
		return
	}

	p := model.Product{
		Code:      req.Code,
		Name:      *req.Name,
		Available: true,
		Synonyms:  req.Synonyms,
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if err := h.store.AddProduct(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.appendCatalogRow(p.Code, p.Name); err != nil {
		h.log.Error().Err(err).Str("code", p.Code).Msg("append catalog row")
	}
	if _, err := h.RefreshCache(); err != nil {
		h.log.Error().Err(err).Msg("cache refresh after product add")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "product " + p.Code + " added",
	})
}

// UpdateProduct handles PUT /api/products/{code}, a partial update with a
// version snapshot of the prior state.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	err := h.store.UpdateProduct(code, store.ProductUpdate{
		Name:         req.Name,
		Category:     req.Category,
		Available:    req.Available,
		Discontinued: req.Discontinued,
		Synonyms:     req.Synonyms,
		ChangeReason: req.Reason,
		ChangedBy:    req.ChangedBy,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if _, err := h.RefreshCache(); err != nil {
		h.log.Error().Err(err).Msg("cache refresh after product update")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "product " + code + " updated",
	})
}

// SoftDeleteProduct handles POST /api/products/soft-delete.
func (h *Handler) SoftDeleteProduct(w http.ResponseWriter, r *http.Request) {
	h.setAvailability(w, r, false, true, "soft delete", "soft deleted")
}

// RestoreProduct handles POST /api/products/restore.
func (h *Handler) RestoreProduct(w http.ResponseWriter, r *http.Request) {
	h.setAvailability(w, r, true, false, "restore", "restored")
}

func (h *Handler) setAvailability(w http.ResponseWriter, r *http.Request, available, discontinued bool, defaultReason, verb string) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "article_number is required")
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = defaultReason
	}
	if err := h.store.SetAvailability(req.Code, available, discontinued, reason, req.ChangedBy); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "product " + req.Code + " " + verb,
	})
}

// ProductChangelog handles GET /api/products/changelog?limit=&offset=.
func (h *Handler) ProductChangelog(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	changes, err := h.store.Changelog(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"changes": changes,
		"count":   len(changes),
	})
}

// appendCatalogRow keeps the CSV snapshot in step with the database so the
// next cache refresh indexes the new product.
func (h *Handler) appendCatalogRow(code, name string) error {
	f, err := os.OpenFile(h.cfg.CatalogCSV, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "\n%s,%s", csvField(code), csvField(name))
	return err
}

func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
