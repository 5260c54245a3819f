package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CardNoWidth is the minimum number of digits after the prefix.
const CardNoWidth = 3

// FormatCardNo joins prefix and n, zero padding n to CardNoWidth digits.
// Wider numbers are kept as is: FormatCardNo("AB", 1000) == "AB1000".
func FormatCardNo(prefix string, n int) string {
	return fmt.Sprintf("%s%0*d", prefix, CardNoWidth, n)
}

// CardSuffix parses the counter that follows prefix in cardNo.
// It reports false when cardNo does not start with prefix or the remainder
// is not made only of ASCII digits.
func CardSuffix(cardNo, prefix string) (int, bool) {
	if !strings.HasPrefix(cardNo, prefix) {
		return 0, false
	}
	rest := cardNo[len(prefix):]
	if rest == "" {
		return 0, false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ValidShortName reports whether s is a usable card prefix: 1-6 uppercase letters or digits.
func ValidShortName(s string) bool {
	if len(s) == 0 || len(s) > 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
