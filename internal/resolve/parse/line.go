package parse

import (
	"regexp"
	"strings"

	"resolver-service/internal/resolve/model"
)

// Line patterns are anchored so a size inside the product text ("Rakza 9
// Black (2.0 mm)") is never mistaken for a quantity.
var (
	// "12345 - Rakza 9 Black, 2"
	reCodeNameQty = regexp.MustCompile(`(?i)^([A-Z0-9]+)\s*-\s*(.+?)[,:\s]+(\d+)\s*$`)
	// "Rakza 9 Black, 2"
	reNameQty = regexp.MustCompile(`^(.+?)[,:\s]+(\d+)\s*$`)
	// "2 x Rakza 9 Black" / "2 Rakza 9 Black"
	reQtyName = regexp.MustCompile(`(?i)^(\d+)\s*[x×]?\s*(.+)$`)
)

// ParseLine parses one plain-text order line. Empty lines and '#' comments
// return ok=false.
func ParseLine(line string) (model.OrderLine, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return model.OrderLine{}, false
	}

	if m := reCodeNameQty.FindStringSubmatch(line); m != nil {
		return model.OrderLine{
			Code:     strings.TrimSpace(m[1]),
			Name:     strings.TrimSpace(m[2]),
			Quantity: m[3],
			Source:   "text",
		}, true
	}

	if reNameQty.MatchString(line) {
		// only trust the name/qty split when an explicit delimiter is
		// present; otherwise trailing numbers are part of the name
		if pos := lastDelimiter(line); pos > 0 {
			name := strings.TrimSpace(line[:pos])
			qty := strings.TrimSpace(line[pos+1:])
			if name != "" && isDigits(qty) {
				return model.OrderLine{
					Name:     name,
					Quantity: qty,
					Source:   "text",
				}, true
			}
		}
	}

	if m := reQtyName.FindStringSubmatch(line); m != nil {
		return model.OrderLine{
			Name:     strings.TrimSpace(m[2]),
			Quantity: m[1],
			Source:   "text",
		}, true
	}

	return model.OrderLine{}, false
}

func lastDelimiter(s string) int {
	pos := -1
	for _, d := range []string{",", ":", "\t"} {
		if p := strings.LastIndex(s, d); p > pos {
			pos = p
		}
	}
	return pos
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
