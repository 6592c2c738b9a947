package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"resolver-service/internal/fileio"
	"resolver-service/internal/resolve/model"
	"resolver-service/internal/resolve/parse"
	"resolver-service/internal/resolve/service"
	"resolver-service/internal/resolve/unmatched"
)

// near misses below the match threshold but above this still surface as
// operator suggestions for unmatched rows
const suggestionMinScore = 60

// ProcessOrder handles POST /api/process-order: multipart order file in,
// resolved rows + ERP sheet + unmatched reports out.
func (h *Handler) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := r.ParseMultipartForm(int64(h.cfg.MaxUploadMB) << 20); err != nil {
		writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file: "+err.Error())
		return
	}
	defer file.Close()

	customerID := r.FormValue("customer_id")
	if customerID == "" {
		customerID = "UNKNOWN"
	}

	lines, err := parseOrderFile(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	orders, tracker := h.processLines(lines)

	stats := model.OrderStatistics{TotalItems: len(orders)}
	for _, o := range orders {
		if o.Status == model.OrderMatched {
			stats.MatchedItems++
		}
	}
	stats.UnmatchedItems = stats.TotalItems - stats.MatchedItems

	outputFile := fmt.Sprintf("order_%s_%s.xlsx", customerID, time.Now().Format("20060102_150405"))
	if err := h.generateOrderSheet(customerID, orders, outputFile); err != nil {
		h.log.Error().Err(err).Msg("generate order sheet")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonReport, txtReport := h.writeUnmatchedReports(tracker, outputFile)

	orderID, err := h.store.SaveOrder(customerID, stats, orders, outputFile)
	if err != nil {
		h.log.Error().Err(err).Msg("save order history")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.Info().
		Str("customer", customerID).
		Int("total", stats.TotalItems).
		Int("matched", stats.MatchedItems).
		Dur("elapsed", time.Since(start)).
		Msg("order processed")

	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"customer_id":       customerID,
		"order_id":          orderID,
		"output_file":       outputFile,
		"unmatched_json":    jsonReport,
		"unmatched_txt":     txtReport,
		"statistics":        stats,
		"unmatched_summary": tracker.Summary(),
		"orders":            orders,
	})
}

// parseOrderFile dispatches on extension: spreadsheets go through fileio,
// json and text through the parse package.
func parseOrderFile(file multipart.File, filename string) ([]model.OrderLine, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx", ".xls", ".csv":
		rows, err := fileio.ReadAnyMaps(file, filename, 1)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filename, err)
		}
		return parse.RowsToOrders(rows, strings.TrimPrefix(ext, ".")), nil
	case ".json":
		return parse.ParseJSON(file)
	case ".txt", ".text":
		return parse.ParseText(io.Reader(file))
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// processLines validates quantities and resolves each row, collecting
// unmatched items and warnings along the way.
func (h *Handler) processLines(lines []model.OrderLine) ([]model.ProcessedOrder, *unmatched.Tracker) {
	tracker := unmatched.NewTracker()
	orders := make([]model.ProcessedOrder, 0, len(lines))

	for _, line := range lines {
		originalText := firstNonEmpty(line.Name, line.Code)

		qty, qtyWarnings, err := parse.ValidateQuantity(line.Quantity)
		if err != nil {
			tracker.Add(originalText, unmatched.InvalidQuantity, map[string]any{
				"quantity":   line.Quantity,
				"error":      err.Error(),
				"row_number": line.RowNumber,
			}, nil)
			orders = append(orders, model.ProcessedOrder{
				OriginalName: line.Name,
				OriginalCode: line.Code,
				Status:       model.OrderInvalidQuantity,
				Warnings:     []string{err.Error()},
				RowNumber:    line.RowNumber,
			})
			continue
		}

		res := h.matcher.Resolve(line.Name, line.Code, 0)
		h.learner.ObserveMatch(originalText, res)

		warnings := qtyWarnings
		if res.Matched() {
			warnings = append(warnings, h.availabilityWarnings(res.Code)...)
		}

		order := model.ProcessedOrder{
			OriginalName: line.Name,
			OriginalCode: line.Code,
			MatchedCode:  res.Code,
			MatchedName:  res.Name,
			Quantity:     qty,
			MatchScore:   res.Score,
			MatchMethod:  res.Method,
			Warnings:     warnings,
			RowNumber:    line.RowNumber,
		}

		if !res.Matched() {
			order.Status = model.OrderUnmatched
			reason := unmatched.NoMatchFound
			if res.Score > 0 {
				reason = unmatched.LowMatchScore
			}
			tracker.Add(originalText, reason, map[string]any{
				"product_name":   line.Name,
				"article_number": line.Code,
				"best_score":     res.Score,
				"row_number":     line.RowNumber,
			}, h.nearMisses(line.Name))
		} else {
			order.Status = model.OrderMatched
			if len(warnings) > 0 {
				tracker.AddWarning(originalText, res.Name, res.Code, warnings)
			}
		}
		orders = append(orders, order)
	}
	return orders, tracker
}

// availabilityWarnings flags matched products marked unavailable or
// discontinued in the store.
func (h *Handler) availabilityWarnings(code string) []string {
	product, err := h.store.GetProductByCode(code)
	if err != nil {
		h.log.Warn().Err(err).Str("code", code).Msg("availability lookup")
		return nil
	}
	if product == nil {
		return nil
	}
	var out []string
	if !product.Available {
		out = append(out, "product is marked as unavailable")
	}
	if product.Discontinued {
		out = append(out, "product is discontinued")
	}
	return out
}

// nearMisses collects sub-threshold fuzzy candidates worth showing to an
// operator reviewing unmatched rows.
func (h *Handler) nearMisses(name string) []unmatched.Suggestion {
	if name == "" {
		return nil
	}
	cache := h.holder.Current()
	var out []unmatched.Suggestion
	for _, m := range service.ExtractTopN(name, cache.AllNames(), 5, service.TokenSortRatio) {
		if m.Score < suggestionMinScore {
			continue
		}
		codes := cache.ByName(m.Candidate)
		if len(codes) == 0 {
			continue
		}
		out = append(out, unmatched.Suggestion{
			Name:  m.Candidate,
			Code:  codes[0],
			Score: m.Score,
		})
	}
	return out
}

func (h *Handler) writeUnmatchedReports(tracker *unmatched.Tracker, outputFile string) (string, string) {
	base := strings.TrimSuffix(outputFile, ".xlsx")
	jsonName := base + "_unmatched.json"
	txtName := base + "_unmatched.txt"

	if err := tracker.ExportJSON(filepath.Join(h.cfg.OutputDir, jsonName)); err != nil {
		h.log.Error().Err(err).Msg("write unmatched json")
		jsonName = ""
	}
	if err := writeTextFile(filepath.Join(h.cfg.OutputDir, txtName), tracker.Report()); err != nil {
		h.log.Error().Err(err).Msg("write unmatched report")
		txtName = ""
	}
	return jsonName, txtName
}

// Orders handles GET /api/orders?limit=&offset= (history, newest first).
func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	orders, err := h.store.OrderHistory(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// OrderByID handles GET /api/orders/{id}.
func (h *Handler) OrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	summary, items, err := h.store.OrderDetails(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summary == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": summary, "items": items})
}
