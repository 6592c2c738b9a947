package fileio

import (
	"fmt"
	"os"
	"strings"

	"resolver-service/internal/resolve/model"
)

// Catalog snapshot column headers, matched case-insensitively.
var (
	catalogCodeHeaders = []string{"article number", "article", "code", "sku"}
	catalogNameHeaders = []string{"product", "name", "product name"}
)

// ReadCatalogCSV loads the catalog snapshot from a CSV file, preserving row
// order. Rows missing a code or a name are skipped.
func ReadCatalogCSV(path string) ([]model.CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	rows, err := readCSV(f, 1)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	codeKey := resolveHeader(rows[0], catalogCodeHeaders)
	nameKey := resolveHeader(rows[0], catalogNameHeaders)
	if codeKey == "" || nameKey == "" {
		return nil, fmt.Errorf("catalog %s: code/name columns not found", path)
	}

	out := make([]model.CatalogEntry, 0, len(rows))
	for _, row := range rows {
		code := strings.TrimSpace(row[codeKey])
		name := strings.TrimSpace(row[nameKey])
		if code == "" || name == "" {
			continue
		}
		out = append(out, model.CatalogEntry{Code: code, Name: name})
	}
	return out, nil
}

func resolveHeader(row map[string]string, wanted []string) string {
	for _, w := range wanted {
		for k := range row {
			if strings.EqualFold(strings.TrimSpace(k), w) {
				return k
			}
		}
	}
	return ""
}
