package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount converts the gateway's decimal amount string ("450.00",
// "450.5", "450") into minor units. Amounts never go through floats.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("parse amount %q: %w", s, ErrInvalidPayload)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("parse amount %q: %w", s, ErrInvalidPayload)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, ErrInvalidPayload)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, ErrInvalidPayload)
	}
	return units*100 + cents, nil
}
