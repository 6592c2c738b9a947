package parse

import (
	"fmt"
	"math"
)

// Quantity warning tags. These surface in API responses, so they stay
// stable strings rather than internal enums.
const (
	WarnDecimalRounded = "decimal_rounded"
	WarnHighQuantity   = "high_quantity"
	WarnLowQuantity    = "low_quantity"
)

// ValidateQuantity cleans a raw quantity value. Negative and fractional
// (0,1) quantities are rejected; other decimals are rounded with a warning.
// Quantities above 100 or at 1-2 pieces get advisory warnings.
func ValidateQuantity(raw string) (int, []string, error) {
	qty, ok := ParseNumber(raw)
	if !ok {
		return 0, nil, fmt.Errorf("invalid quantity format: %q", raw)
	}

	if qty < 0 {
		return 0, nil, fmt.Errorf("negative quantity is not allowed: %v", qty)
	}
	if qty > 0 && qty < 1 {
		return 0, nil, fmt.Errorf("fractional quantity (%v) between 0 and 1 is invalid", qty)
	}

	var warnings []string
	rounded := math.Round(qty)
	if rounded != qty {
		warnings = append(warnings, fmt.Sprintf("%s: %v -> %v", WarnDecimalRounded, qty, rounded))
	}
	n := int(rounded)

	if n == 0 {
		return 0, nil, fmt.Errorf("quantity cannot be zero")
	}
	if n > 100 {
		warnings = append(warnings, fmt.Sprintf("%s: %d", WarnHighQuantity, n))
	}
	if n >= 1 && n <= 2 {
		warnings = append(warnings, fmt.Sprintf("%s: %d", WarnLowQuantity, n))
	}
	return n, warnings, nil
}
