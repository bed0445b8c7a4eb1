package core

import (
	"strconv"
	"strings"
)

// ParseAmount converts a digit string to a positive point amount. Leading
// zeros are ignored, so "007" is 7. Signs, separators and zero are rejected.
func ParseAmount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrInvalidAmount
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if err := ValidateAmount(n); err != nil {
		return 0, err
	}
	return n, nil
}
