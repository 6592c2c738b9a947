package model

// OrderLine is one raw order row as produced by the ingestion layer, before
// quantity validation and catalog resolution.
type OrderLine struct {
	Name      string `json:"product_name,omitempty"`
	Code      string `json:"article_number,omitempty"`
	Quantity  string `json:"quantity"` // raw, validated later
	RowNumber int    `json:"row_number"`
	Source    string `json:"source"` // excel | csv | json | text
}

// OrderStatus classifies a processed order row.
type OrderStatus string

const (
	OrderMatched         OrderStatus = "matched"
	OrderUnmatched       OrderStatus = "unmatched"
	OrderInvalidQuantity OrderStatus = "invalid_quantity"
)

// ProcessedOrder is an order row after validation and resolution.
type ProcessedOrder struct {
	OriginalName string      `json:"original_product,omitempty"`
	OriginalCode string      `json:"original_article,omitempty"`
	MatchedCode  string      `json:"matched_article,omitempty"`
	MatchedName  string      `json:"matched_product,omitempty"`
	Quantity     int         `json:"quantity"`
	MatchScore   int         `json:"match_score"`
	MatchMethod  MatchMethod `json:"match_method"`
	Status       OrderStatus `json:"status"`
	Warnings     []string    `json:"warnings,omitempty"`
	RowNumber    int         `json:"row_number"`
}

// OrderStatistics summarizes one processed order file.
type OrderStatistics struct {
	TotalItems     int `json:"total_items"`
	MatchedItems   int `json:"matched_items"`
	UnmatchedItems int `json:"unmatched_items"`
}
