// Package store persists catalog products, their curated synonyms and the
// processed-order history in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"resolver-service/internal/resolve/model"
)

// ErrNotFound reports a write against a product code that does not exist.
var ErrNotFound = errors.New("product not found")

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			article_number TEXT UNIQUE NOT NULL,
			product_name TEXT NOT NULL,
			category TEXT,
			is_available INTEGER DEFAULT 1,
			is_discontinued INTEGER DEFAULT 0,
			synonyms TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS product_versions (
			version_id INTEGER PRIMARY KEY AUTOINCREMENT,
			article_number TEXT NOT NULL,
			product_name TEXT NOT NULL,
			category TEXT,
			is_available INTEGER DEFAULT 1,
			is_discontinued INTEGER DEFAULT 0,
			synonyms TEXT,
			version_created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			change_reason TEXT,
			changed_by TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_product_versions_article
			ON product_versions(article_number)`,
		`CREATE TABLE IF NOT EXISTS order_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			total_items INTEGER,
			matched_items INTEGER,
			unmatched_items INTEGER,
			output_file TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_id INTEGER,
			original_product TEXT,
			matched_article TEXT,
			matched_product TEXT,
			quantity INTEGER,
			match_score INTEGER,
			match_method TEXT,
			status TEXT,
			FOREIGN KEY (order_id) REFERENCES order_history (id)
		)`,
		`CREATE TABLE IF NOT EXISTS product_stats (
			article_number TEXT PRIMARY KEY,
			match_count INTEGER DEFAULT 0,
			last_matched DATETIME
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// AddProduct inserts a new catalog product. Duplicate codes are an error.
func (s *Store) AddProduct(p model.Product) error {
	syn, err := marshalSynonyms(p.Synonyms)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO products (article_number, product_name, category, is_available, is_discontinued, synonyms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Code, p.Name, nullable(p.Category), boolInt(p.Available), boolInt(p.Discontinued), syn,
	)
	if err != nil {
		return fmt.Errorf("add product %s: %w", p.Code, err)
	}
	return nil
}

// GetProductByCode returns the stored product or nil when absent.
func (s *Store) GetProductByCode(code string) (*model.Product, error) {
	row := s.db.QueryRow(
		`SELECT article_number, product_name, COALESCE(category, ''), is_available, is_discontinued,
		        COALESCE(synonyms, ''), created_at, updated_at
		 FROM products WHERE article_number = ?`, code)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", code, err)
	}
	return p, nil
}

// ListProducts returns all stored products ordered by name.
func (s *Store) ListProducts() ([]model.Product, error) {
	rows, err := s.db.Query(
		`SELECT article_number, product_name, COALESCE(category, ''), is_available, is_discontinued,
		        COALESCE(synonyms, ''), created_at, updated_at
		 FROM products ORDER BY product_name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// SynonymRecords flattens all stored synonyms into cache-ready records.
// Row order follows product name so cache rebuilds are deterministic.
func (s *Store) SynonymRecords() ([]model.SynonymRecord, error) {
	products, err := s.ListProducts()
	if err != nil {
		return nil, err
	}
	var out []model.SynonymRecord
	for _, p := range products {
		for _, syn := range p.Synonyms {
			out = append(out, model.SynonymRecord{
				Synonym: syn,
				Code:    p.Code,
				Name:    p.Name,
				Score:   100,
			})
		}
	}
	return out, nil
}

// SaveSynonyms replaces the synonym list of a product, recording the prior
// state in product_versions first.
func (s *Store) SaveSynonyms(code string, synonyms []string) error {
	if err := s.snapshotVersion(code, "synonym update", ""); err != nil {
		return err
	}
	syn, err := marshalSynonyms(synonyms)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(
		`UPDATE products SET synonyms = ?, updated_at = CURRENT_TIMESTAMP WHERE article_number = ?`,
		syn, code)
	if err != nil {
		return fmt.Errorf("save synonyms %s: %w", code, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("save synonyms %s: %w", code, ErrNotFound)
	}
	return nil
}

// ProductUpdate carries the fields of a partial product update. Nil pointers
// leave the stored value unchanged; a nil Synonyms slice keeps the stored
// synonyms.
type ProductUpdate struct {
	Name         *string
	Category     *string
	Available    *bool
	Discontinued *bool
	Synonyms     []string
	ChangeReason string
	ChangedBy    string
}

// UpdateProduct applies a partial update to a product, recording the prior
// state in product_versions first.
func (s *Store) UpdateProduct(code string, upd ProductUpdate) error {
	p, err := s.GetProductByCode(code)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("update product %s: %w", code, ErrNotFound)
	}

	reason := upd.ChangeReason
	if reason == "" {
		reason = "manual update"
	}
	if err := s.snapshotVersion(code, reason, upd.ChangedBy); err != nil {
		return err
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Available != nil {
		p.Available = *upd.Available
	}
	if upd.Discontinued != nil {
		p.Discontinued = *upd.Discontinued
	}
	if upd.Synonyms != nil {
		p.Synonyms = upd.Synonyms
	}

	syn, err := marshalSynonyms(p.Synonyms)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`UPDATE products SET product_name = ?, category = ?, is_available = ?, is_discontinued = ?,
		        synonyms = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE article_number = ?`,
		p.Name, nullable(p.Category), boolInt(p.Available), boolInt(p.Discontinued), syn, code)
	if err != nil {
		return fmt.Errorf("update product %s: %w", code, err)
	}
	return nil
}

// SetAvailability flags a product available/discontinued, versioning first.
// Soft delete and restore are both expressed through this.
func (s *Store) SetAvailability(code string, available, discontinued bool, reason, changedBy string) error {
	if err := s.snapshotVersion(code, reason, changedBy); err != nil {
		return err
	}
	res, err := s.db.Exec(
		`UPDATE products SET is_available = ?, is_discontinued = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE article_number = ?`,
		boolInt(available), boolInt(discontinued), code)
	if err != nil {
		return fmt.Errorf("set availability %s: %w", code, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set availability %s: %w", code, ErrNotFound)
	}
	return nil
}

// snapshotVersion copies the current product row into product_versions.
// A missing product is not an error here; the update itself reports that.
func (s *Store) snapshotVersion(code, reason, changedBy string) error {
	_, err := s.db.Exec(
		`INSERT INTO product_versions
		   (article_number, product_name, category, is_available, is_discontinued, synonyms, change_reason, changed_by)
		 SELECT article_number, product_name, category, is_available, is_discontinued, synonyms, ?, ?
		 FROM products WHERE article_number = ?`,
		nullable(reason), nullable(changedBy), code)
	if err != nil {
		return fmt.Errorf("snapshot version %s: %w", code, err)
	}
	return nil
}

// ProductVersion is one audit copy of a product record.
type ProductVersion struct {
	VersionID    int64     `json:"version_id"`
	Code         string    `json:"article_number"`
	Name         string    `json:"product_name"`
	Category     string    `json:"category,omitempty"`
	Available    bool      `json:"is_available"`
	Discontinued bool      `json:"is_discontinued"`
	Synonyms     []string  `json:"synonyms"`
	CreatedAt    time.Time `json:"version_created_at"`
	ChangeReason string    `json:"change_reason,omitempty"`
	ChangedBy    string    `json:"changed_by,omitempty"`
}

// VersionHistory lists audit copies for a code, newest first.
func (s *Store) VersionHistory(code string) ([]ProductVersion, error) {
	rows, err := s.db.Query(
		`SELECT version_id, article_number, product_name, COALESCE(category, ''), is_available,
		        is_discontinued, COALESCE(synonyms, ''), version_created_at,
		        COALESCE(change_reason, ''), COALESCE(changed_by, '')
		 FROM product_versions WHERE article_number = ? ORDER BY version_id DESC`, code)
	if err != nil {
		return nil, fmt.Errorf("version history %s: %w", code, err)
	}
	defer rows.Close()

	var out []ProductVersion
	for rows.Next() {
		var v ProductVersion
		var avail, disc int
		var syn string
		if err := rows.Scan(&v.VersionID, &v.Code, &v.Name, &v.Category, &avail, &disc,
			&syn, &v.CreatedAt, &v.ChangeReason, &v.ChangedBy); err != nil {
			return nil, fmt.Errorf("version history %s: %w", code, err)
		}
		v.Available = avail != 0
		v.Discontinued = disc != 0
		v.Synonyms = unmarshalSynonyms(syn)
		out = append(out, v)
	}
	return out, rows.Err()
}

// Changelog lists audit copies across all products, newest first.
func (s *Store) Changelog(limit, offset int) ([]ProductVersion, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT version_id, article_number, product_name, COALESCE(category, ''), is_available,
		        is_discontinued, COALESCE(synonyms, ''), version_created_at,
		        COALESCE(change_reason, ''), COALESCE(changed_by, '')
		 FROM product_versions ORDER BY version_id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("changelog: %w", err)
	}
	defer rows.Close()

	var out []ProductVersion
	for rows.Next() {
		var v ProductVersion
		var avail, disc int
		var syn string
		if err := rows.Scan(&v.VersionID, &v.Code, &v.Name, &v.Category, &avail, &disc,
			&syn, &v.CreatedAt, &v.ChangeReason, &v.ChangedBy); err != nil {
			return nil, fmt.Errorf("changelog: %w", err)
		}
		v.Available = avail != 0
		v.Discontinued = disc != 0
		v.Synonyms = unmarshalSynonyms(syn)
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(r rowScanner) (*model.Product, error) {
	var p model.Product
	var avail, disc int
	var syn string
	if err := r.Scan(&p.Code, &p.Name, &p.Category, &avail, &disc, &syn, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Available = avail != 0
	p.Discontinued = disc != 0
	p.Synonyms = unmarshalSynonyms(syn)
	return &p, nil
}

func marshalSynonyms(synonyms []string) (any, error) {
	if len(synonyms) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(synonyms)
	if err != nil {
		return nil, fmt.Errorf("marshal synonyms: %w", err)
	}
	return string(b), nil
}

func unmarshalSynonyms(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
