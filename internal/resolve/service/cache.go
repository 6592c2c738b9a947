package service

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"resolver-service/internal/resolve/model"
)

// Cache is one immutable generation of the catalog index. It is never
// mutated after BuildCache returns; a refresh builds a new generation and
// swaps the pointer held by Holder, so concurrent readers never see a
// partially built index.
type Cache struct {
	byCode   map[string][]model.CatalogEntry
	byName   map[string][]string // name -> codes, catalog order
	synonyms map[string]model.SynonymRecord
	entries  []model.CatalogEntry
	codes    []string // unique, first-appearance order
	names    []string // unique, first-appearance order
	version  int64
	builtAt  time.Time
}

// CacheInfo is a point-in-time description of a cache generation.
type CacheInfo struct {
	Version       int64     `json:"version"`
	BuiltAt       time.Time `json:"built_at"`
	TotalEntries  int       `json:"total_entries"`
	TotalSynonyms int       `json:"total_synonyms"`
	UniqueCodes   int       `json:"unique_codes"`
	UniqueNames   int       `json:"unique_names"`
}

// BuildCache constructs a new cache generation from catalog and synonym
// snapshots. Insertion order is preserved within each code/name bucket so
// "first wins" fallbacks stay deterministic.
func BuildCache(entries []model.CatalogEntry, synonyms []model.SynonymRecord, version int64) *Cache {
	c := &Cache{
		byCode:   make(map[string][]model.CatalogEntry, len(entries)),
		byName:   make(map[string][]string, len(entries)),
		synonyms: make(map[string]model.SynonymRecord, len(synonyms)),
		entries:  make([]model.CatalogEntry, 0, len(entries)),
		version:  version,
		builtAt:  time.Now(),
	}

	for _, e := range entries {
		if e.Code == "" || e.Name == "" {
			continue
		}
		if _, seen := c.byCode[e.Code]; !seen {
			c.codes = append(c.codes, e.Code)
		}
		if _, seen := c.byName[e.Name]; !seen {
			c.names = append(c.names, e.Name)
		}
		c.byCode[e.Code] = append(c.byCode[e.Code], e)
		c.byName[e.Name] = append(c.byName[e.Name], e.Code)
		c.entries = append(c.entries, e)
	}

	for _, s := range synonyms {
		if s.Synonym == "" {
			continue
		}
		s.Score = 100
		c.synonyms[strings.ToLower(s.Synonym)] = s
	}

	return c
}

// ByCode returns all catalog entries for a code, in catalog order.
func (c *Cache) ByCode(code string) []model.CatalogEntry { return c.byCode[code] }

// ByName returns all codes recorded for a name, in catalog order.
func (c *Cache) ByName(name string) []string { return c.byName[name] }

// BySynonym looks up a case-folded exact synonym. Never fuzzy.
func (c *Cache) BySynonym(text string) (model.SynonymRecord, bool) {
	s, ok := c.synonyms[strings.ToLower(text)]
	return s, ok
}

// AllEntries returns every catalog entry in catalog order.
func (c *Cache) AllEntries() []model.CatalogEntry { return c.entries }

// AllCodes returns unique codes in first-appearance order.
func (c *Cache) AllCodes() []string { return c.codes }

// AllNames returns unique names in first-appearance order.
func (c *Cache) AllNames() []string { return c.names }

func (c *Cache) Version() int64 { return c.version }

func (c *Cache) Info() CacheInfo {
	return CacheInfo{
		Version:       c.version,
		BuiltAt:       c.builtAt,
		TotalEntries:  len(c.entries),
		TotalSynonyms: len(c.synonyms),
		UniqueCodes:   len(c.byCode),
		UniqueNames:   len(c.byName),
	}
}

// Holder publishes the current cache generation. Readers grab a generation
// with Current and keep a consistent view for the duration of their call;
// Refresh builds the next generation and swaps it in atomically.
type Holder struct {
	cur atomic.Pointer[Cache]
	mu  sync.Mutex // serializes Refresh so versions stay monotonic
}

// NewHolder starts with an empty generation so readers never see nil.
func NewHolder() *Holder {
	h := &Holder{}
	h.cur.Store(BuildCache(nil, nil, 0))
	return h
}

// Current returns the current cache generation.
func (h *Holder) Current() *Cache { return h.cur.Load() }

// Refresh builds a new generation with the next version number and makes it
// current. The old generation stays valid for readers still holding it.
func (h *Holder) Refresh(entries []model.CatalogEntry, synonyms []model.SynonymRecord) *Cache {
	h.mu.Lock()
	defer h.mu.Unlock()
	next := BuildCache(entries, synonyms, h.cur.Load().version+1)
	h.cur.Store(next)
	return next
}
