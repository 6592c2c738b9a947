package parse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"resolver-service/internal/resolve/model"
)

// RowsToOrders converts header-keyed rows (as produced by fileio) to order
// lines, auto-detecting the relevant columns. rows with neither a name nor a
// code, or without a quantity, are skipped.
func RowsToOrders(rows []map[string]string, source string) []model.OrderLine {
	if len(rows) == 0 {
		return nil
	}
	headers := make([]string, 0, len(rows[0]))
	for h := range rows[0] {
		headers = append(headers, h)
	}
	cols := DetectColumns(headers)

	out := make([]model.OrderLine, 0, len(rows))
	for i, row := range rows {
		line := model.OrderLine{
			Name:      strings.TrimSpace(row[cols.NameKey]),
			Code:      strings.TrimSpace(row[cols.CodeKey]),
			Quantity:  strings.TrimSpace(row[cols.QuantityKey]),
			RowNumber: i + 2, // 1-based plus header row
			Source:    source,
		}
		if (line.Name == "" && line.Code == "") || line.Quantity == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// jsonItem accepts the field aliases seen in customer JSON exports.
type jsonItem struct {
	Product     string          `json:"product"`
	ProductName string          `json:"product_name"`
	Name        string          `json:"name"`
	Article     string          `json:"article"`
	ArticleNum  string          `json:"article_number"`
	SKU         string          `json:"sku"`
	Quantity    json.RawMessage `json:"quantity"`
	Qty         json.RawMessage `json:"qty"`
	Amount      json.RawMessage `json:"amount"`
}

// ParseJSON reads a JSON order document: either a bare array of items or an
// object with an "items"/"orders"/"products" array.
func ParseJSON(r io.Reader) ([]model.OrderLine, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode order json: %w", err)
	}

	var items []jsonItem
	if err := json.Unmarshal(raw, &items); err != nil {
		var wrapper struct {
			Items    []jsonItem `json:"items"`
			Orders   []jsonItem `json:"orders"`
			Products []jsonItem `json:"products"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("unsupported json structure: %w", err)
		}
		switch {
		case len(wrapper.Items) > 0:
			items = wrapper.Items
		case len(wrapper.Orders) > 0:
			items = wrapper.Orders
		default:
			items = wrapper.Products
		}
	}

	out := make([]model.OrderLine, 0, len(items))
	for i, it := range items {
		line := model.OrderLine{
			Name:      firstNonEmpty(it.Product, it.ProductName, it.Name),
			Code:      firstNonEmpty(it.Article, it.ArticleNum, it.SKU),
			Quantity:  rawToString(firstRaw(it.Quantity, it.Qty, it.Amount)),
			RowNumber: i + 1,
			Source:    "json",
		}
		if (line.Name == "" && line.Code == "") || line.Quantity == "" {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

// ParseText reads a plain-text order, one item per line.
func ParseText(r io.Reader) ([]model.OrderLine, error) {
	sc := bufio.NewScanner(r)
	var out []model.OrderLine
	row := 0
	for sc.Scan() {
		row++
		line, ok := ParseLine(sc.Text())
		if !ok {
			continue
		}
		line.RowNumber = row
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read order text: %w", err)
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstRaw(vals ...json.RawMessage) json.RawMessage {
	for _, v := range vals {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

// rawToString renders a JSON scalar quantity ("3", 3, 3.5) as its text form.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", f), "0"), ".")
	}
	return ""
}
