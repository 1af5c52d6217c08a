package archive

import "strings"

// IsEquityCUSIP reports whether a CUSIP identifies a US equity issue:
// at least eight characters, a leading '0' issuer prefix, and issue
// number "10" in positions 7-8.
func IsEquityCUSIP(cusip string) bool {
	c := strings.ToUpper(strings.TrimSpace(cusip))
	return len(c) >= 8 && c[0] == '0' && c[6:8] == "10"
}
