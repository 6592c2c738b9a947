package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var rxKeepNums = regexp.MustCompile(`[^\d\.\-]`)

// ParseNumber parses quantities as they appear in spreadsheets: "1 234,50",
// "197 ,00", NBSP/NNBSP thousand separators, comma decimals.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	repl := strings.NewReplacer(" ", "", " ", "", " ", "", "\t", "", ",", ".")
	s = repl.Replace(s)
	s = rxKeepNums.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
