// Package unmatched groups the items of one processed order that could not
// be resolved, keyed by root cause, and renders operator-facing reports.
package unmatched

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Reason codes an item's root cause.
type Reason string

const (
	NoMatchFound    Reason = "no_match_found"
	LowMatchScore   Reason = "low_match_score"
	InvalidQuantity Reason = "invalid_quantity"
	MissingData     Reason = "missing_data"
)

// Suggestion is a near-miss catalog candidate offered for operator review.
type Suggestion struct {
	Name  string `json:"product_name"`
	Code  string `json:"article_number"`
	Score int    `json:"score"`
}

// Item is one unresolved order row.
type Item struct {
	OriginalText string         `json:"original_text"`
	Reason       Reason         `json:"reason"`
	Details      map[string]any `json:"details,omitempty"`
	Suggestions  []Suggestion   `json:"suggestions,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// WarningItem is a row that matched but carries advisories.
type WarningItem struct {
	OriginalText string    `json:"original_text"`
	MatchedName  string    `json:"matched_product"`
	MatchedCode  string    `json:"matched_article"`
	Warnings     []string  `json:"warnings"`
	Timestamp    time.Time `json:"timestamp"`
}

// Tracker collects unmatched and warning items for a single order run.
// It is not safe for concurrent use; each request owns its own tracker.
type Tracker struct {
	items       []Item
	byReason    map[Reason][]Item
	reasonOrder []Reason // first-seen order, keeps reports deterministic
	warnings    []WarningItem
}

func NewTracker() *Tracker {
	return &Tracker{byReason: make(map[Reason][]Item)}
}

func (t *Tracker) Add(originalText string, reason Reason, details map[string]any, suggestions []Suggestion) {
	item := Item{
		OriginalText: originalText,
		Reason:       reason,
		Details:      details,
		Suggestions:  suggestions,
		Timestamp:    time.Now(),
	}
	t.items = append(t.items, item)
	if _, seen := t.byReason[reason]; !seen {
		t.reasonOrder = append(t.reasonOrder, reason)
	}
	t.byReason[reason] = append(t.byReason[reason], item)
}

func (t *Tracker) AddWarning(originalText, matchedName, matchedCode string, warnings []string) {
	t.warnings = append(t.warnings, WarningItem{
		OriginalText: originalText,
		MatchedName:  matchedName,
		MatchedCode:  matchedCode,
		Warnings:     warnings,
		Timestamp:    time.Now(),
	})
}

func (t *Tracker) Items() []Item           { return t.items }
func (t *Tracker) Warnings() []WarningItem { return t.warnings }

// Summary groups counts per reason.
type Summary struct {
	TotalUnmatched int               `json:"total_unmatched"`
	TotalWarnings  int               `json:"total_warnings"`
	ByReason       map[Reason][]Item `json:"by_reason"`
}

func (t *Tracker) Summary() Summary {
	return Summary{
		TotalUnmatched: len(t.items),
		TotalWarnings:  len(t.warnings),
		ByReason:       t.byReason,
	}
}

// ExportJSON writes the full tracker state to path.
func (t *Tracker) ExportJSON(path string) error {
	doc := struct {
		Summary     Summary       `json:"summary"`
		Items       []Item        `json:"unmatched_items"`
		Warnings    []WarningItem `json:"warning_items"`
		GeneratedAt time.Time     `json:"generated_at"`
	}{t.Summary(), t.items, t.warnings, time.Now()}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal unmatched report: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write unmatched report: %w", err)
	}
	return nil
}

// Report renders a plain-text summary for operators.
func (t *Tracker) Report() string {
	var b strings.Builder
	line := strings.Repeat("=", 80)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "UNMATCHED ITEMS REPORT")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "Total Unmatched: %d\n", len(t.items))
	fmt.Fprintf(&b, "Total Warnings: %d\n\n", len(t.warnings))

	for _, reason := range t.reasonOrder {
		items := t.byReason[reason]
		fmt.Fprintf(&b, "%s (%d items):\n", strings.ToUpper(string(reason)), len(items))
		for i, item := range items {
			if i >= 10 {
				fmt.Fprintf(&b, "  ... and %d more\n", len(items)-10)
				break
			}
			fmt.Fprintf(&b, "  - %s\n", item.OriginalText)
			if len(item.Suggestions) > 0 {
				fmt.Fprintf(&b, "    suggestions: %d\n", len(item.Suggestions))
			}
		}
		fmt.Fprintln(&b)
	}

	if len(t.warnings) > 0 {
		fmt.Fprintln(&b, "ITEMS WITH WARNINGS:")
		for i, w := range t.warnings {
			if i >= 20 {
				break
			}
			fmt.Fprintf(&b, "  - %s -> %s\n", w.OriginalText, w.MatchedName)
			for _, msg := range w.Warnings {
				fmt.Fprintf(&b, "    ! %s\n", msg)
			}
		}
	}
	return b.String()
}
