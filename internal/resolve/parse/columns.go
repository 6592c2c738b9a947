package parse

import "strings"

// ColumnMapping holds the detected header names of an order table.
type ColumnMapping struct {
	NameKey     string
	CodeKey     string
	QuantityKey string
}

// Keyword tiers: a strong keyword always beats a weak one, regardless of
// column order. German headers show up in supplier spreadsheets.
var (
	strongNameKeys = []string{"product", "item", "name", "artikel", "produkt"}
	weakNameKeys   = []string{"description", "desc", "title"}

	strongCodeKeys = []string{"article", "sku", "code", "artikelnummer", "artikelnr"}
	weakCodeKeys   = []string{"id", "number", "nr", "no"}

	strongQtyKeys = []string{"quantity", "qty", "amount", "menge", "anzahl"}
	weakQtyKeys   = []string{"count", "num", "pieces"}
)

// DetectColumns finds the product, code and quantity columns among headers.
// Missing columns stay empty.
func DetectColumns(headers []string) ColumnMapping {
	var m ColumnMapping
	var nameStrength, codeStrength, qtyStrength int

	for _, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		pick(&m.NameKey, &nameStrength, h, lower, strongNameKeys, weakNameKeys)
		pick(&m.CodeKey, &codeStrength, h, lower, strongCodeKeys, weakCodeKeys)
		pick(&m.QuantityKey, &qtyStrength, h, lower, strongQtyKeys, weakQtyKeys)
	}
	return m
}

func pick(dst *string, strength *int, header, lower string, strong, weak []string) {
	for _, k := range strong {
		if strings.Contains(lower, k) {
			if *strength < 2 {
				*dst = header
				*strength = 2
			}
			return
		}
	}
	if *strength >= 1 {
		return
	}
	for _, k := range weak {
		if strings.Contains(lower, k) {
			*dst = header
			*strength = 1
			return
		}
	}
}
