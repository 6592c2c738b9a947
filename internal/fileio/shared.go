// Package fileio reads tabular order and catalog files (CSV, XLS, XLSX)
// into header-keyed rows, hiding encoding and format quirks from callers.
package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ReadAnyMaps picks a parser by file extension and returns rows as
// map[header]value. headerRow is 1-based.
func ReadAnyMaps(r io.Reader, filename string, headerRow int) ([]map[string]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r, headerRow)
	case ".xls":
		return readXLS(r, headerRow)
	case ".csv":
		return readCSV(r, headerRow)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
}

// pickHeader takes the header row, substituting "Column N" for blanks.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = strings.TrimSpace(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// rowsToMaps converts the cell grid to []map keyed by header, skipping rows
// that are entirely blank.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	var out []map[string]string
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c := 0; c < len(headers); c++ {
			var v string
			if c < len(rec) {
				v = rec[c]
			}
			m[headers[c]] = v
			if strings.TrimSpace(v) != "" {
				empty = false
			}
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}

// normalizeCell trims cell text and replaces non-breaking spaces.
func normalizeCell(s string) string {
	s = strings.NewReplacer(" ", " ", " ", " ").Replace(s)
	return strings.TrimSpace(s)
}
