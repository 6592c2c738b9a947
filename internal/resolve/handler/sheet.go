package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	excelize "github.com/xuri/excelize/v2"

	"resolver-service/internal/resolve/model"
)

// generateOrderSheet fills the ERP template: customer id into B1, then the
// quantity of every matched row into column G of the row whose column B
// holds the matched article number. Template rows start at 3.
func (h *Handler) generateOrderSheet(customerID string, orders []model.ProcessedOrder, outputFile string) error {
	f, err := excelize.OpenFile(h.cfg.TemplateXLSX)
	if err != nil {
		return fmt.Errorf("open template %s: %w", h.cfg.TemplateXLSX, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "B1", customerID); err != nil {
		return fmt.Errorf("set customer id: %w", err)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read template rows: %w", err)
	}
	codeToRow := make(map[string]int, len(rows))
	for i := 2; i < len(rows); i++ { // 0-based, template data starts at row 3
		if len(rows[i]) > 1 {
			if code := strings.TrimSpace(rows[i][1]); code != "" {
				codeToRow[code] = i + 1
			}
		}
	}

	for _, o := range orders {
		if o.Status != model.OrderMatched {
			continue
		}
		if row, ok := codeToRow[o.MatchedCode]; ok {
			cell := fmt.Sprintf("G%d", row)
			if err := f.SetCellValue(sheet, cell, o.Quantity); err != nil {
				return fmt.Errorf("fill %s: %w", cell, err)
			}
		}
	}

	if err := os.MkdirAll(h.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	out := filepath.Join(h.cfg.OutputDir, outputFile)
	if err := f.SaveAs(out); err != nil {
		return fmt.Errorf("save order sheet %s: %w", out, err)
	}
	return nil
}

func writeTextFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
