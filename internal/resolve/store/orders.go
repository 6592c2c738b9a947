package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resolver-service/internal/resolve/model"
)

// SaveOrder records a processed order with its items and bumps the match
// counter of every matched product. Returns the new order id.
func (s *Store) SaveOrder(customerID string, stats model.OrderStatistics, orders []model.ProcessedOrder, outputFile string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("save order: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO order_history (customer_id, total_items, matched_items, unmatched_items, output_file)
		 VALUES (?, ?, ?, ?, ?)`,
		customerID, stats.TotalItems, stats.MatchedItems, stats.UnmatchedItems, outputFile)
	if err != nil {
		return 0, fmt.Errorf("save order history: %w", err)
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save order history: %w", err)
	}

	for _, o := range orders {
		if _, err := tx.Exec(
			`INSERT INTO order_items
			   (order_id, original_product, matched_article, matched_product, quantity, match_score, match_method, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			orderID, o.OriginalName, o.MatchedCode, o.MatchedName, o.Quantity,
			o.MatchScore, o.MatchMethod.String(), string(o.Status)); err != nil {
			return 0, fmt.Errorf("save order item: %w", err)
		}

		if o.Status == model.OrderMatched && o.MatchedCode != "" {
			if _, err := tx.Exec(
				`INSERT INTO product_stats (article_number, match_count, last_matched)
				 VALUES (?, 1, CURRENT_TIMESTAMP)
				 ON CONFLICT(article_number) DO UPDATE SET
				   match_count = match_count + 1,
				   last_matched = CURRENT_TIMESTAMP`,
				o.MatchedCode); err != nil {
				return 0, fmt.Errorf("update product stats: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save order: %w", err)
	}
	return orderID, nil
}

// OrderSummary is one order_history row.
type OrderSummary struct {
	ID             int64     `json:"id"`
	CustomerID     string    `json:"customer_id"`
	Timestamp      time.Time `json:"timestamp"`
	TotalItems     int       `json:"total_items"`
	MatchedItems   int       `json:"matched_items"`
	UnmatchedItems int       `json:"unmatched_items"`
	OutputFile     string    `json:"output_file"`
}

// OrderHistory returns order summaries newest first, paginated.
func (s *Store) OrderHistory(limit, offset int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, customer_id, timestamp, total_items, matched_items, unmatched_items, COALESCE(output_file, '')
		 FROM order_history ORDER BY timestamp DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	defer rows.Close()

	var out []OrderSummary
	for rows.Next() {
		var o OrderSummary
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Timestamp, &o.TotalItems,
			&o.MatchedItems, &o.UnmatchedItems, &o.OutputFile); err != nil {
			return nil, fmt.Errorf("order history: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// OrderDetails returns one order with its items, or nil when absent.
func (s *Store) OrderDetails(orderID int64) (*OrderSummary, []model.ProcessedOrder, error) {
	var o OrderSummary
	err := s.db.QueryRow(
		`SELECT id, customer_id, timestamp, total_items, matched_items, unmatched_items, COALESCE(output_file, '')
		 FROM order_history WHERE id = ?`, orderID).
		Scan(&o.ID, &o.CustomerID, &o.Timestamp, &o.TotalItems, &o.MatchedItems, &o.UnmatchedItems, &o.OutputFile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("order details %d: %w", orderID, err)
	}

	rows, err := s.db.Query(
		`SELECT COALESCE(original_product, ''), COALESCE(matched_article, ''), COALESCE(matched_product, ''),
		        quantity, match_score, COALESCE(match_method, ''), status
		 FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("order details %d: %w", orderID, err)
	}
	defer rows.Close()

	var items []model.ProcessedOrder
	for rows.Next() {
		var it model.ProcessedOrder
		var method, status string
		if err := rows.Scan(&it.OriginalName, &it.MatchedCode, &it.MatchedName,
			&it.Quantity, &it.MatchScore, &method, &status); err != nil {
			return nil, nil, fmt.Errorf("order details %d: %w", orderID, err)
		}
		it.Status = model.OrderStatus(status)
		items = append(items, it)
	}
	return &o, items, rows.Err()
}

// MatchedProductStat pairs a product with its lifetime match count.
type MatchedProductStat struct {
	Code       string     `json:"article_number"`
	Name       string     `json:"product_name"`
	MatchCount int        `json:"match_count"`
	LastMatch  *time.Time `json:"last_matched,omitempty"`
}

// ProductStats reports the 20 most-matched products and up to 20 products
// never matched at all.
func (s *Store) ProductStats() (most, never []MatchedProductStat, err error) {
	rows, err := s.db.Query(
		`SELECT p.article_number, p.product_name, ps.match_count, ps.last_matched
		 FROM products p JOIN product_stats ps ON p.article_number = ps.article_number
		 ORDER BY ps.match_count DESC LIMIT 20`)
	if err != nil {
		return nil, nil, fmt.Errorf("product stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var st MatchedProductStat
		if err := rows.Scan(&st.Code, &st.Name, &st.MatchCount, &st.LastMatch); err != nil {
			return nil, nil, fmt.Errorf("product stats: %w", err)
		}
		most = append(most, st)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	nrows, err := s.db.Query(
		`SELECT p.article_number, p.product_name
		 FROM products p LEFT JOIN product_stats ps ON p.article_number = ps.article_number
		 WHERE ps.match_count IS NULL OR ps.match_count = 0
		 ORDER BY p.product_name LIMIT 20`)
	if err != nil {
		return nil, nil, fmt.Errorf("product stats: %w", err)
	}
	defer nrows.Close()
	for nrows.Next() {
		var st MatchedProductStat
		if err := nrows.Scan(&st.Code, &st.Name); err != nil {
			return nil, nil, fmt.Errorf("product stats: %w", err)
		}
		never = append(never, st)
	}
	return most, never, nrows.Err()
}
