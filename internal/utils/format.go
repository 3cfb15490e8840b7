// Package utils provides small display and validation helpers.
package utils

import (
	"fmt"
	"strconv"
)

// BytesPerMB is the number of bytes in one megabyte as reported by the
// Outline server (binary megabytes).
const BytesPerMB = 1 << 20

// Truncate shortens s to at most width characters, replacing the tail with
// the given ellipsis when it does not fit. Width is counted in runes.
func Truncate(s string, width int, ellipsis string) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	e := []rune(ellipsis)
	if width <= len(e) {
		return string(e[:width])
	}
	return string(r[:width-len(e)]) + ellipsis
}

// FormatMB renders a byte count as megabytes with one decimal place.
// 5242880 bytes -> "5.0".
func FormatMB(bytes int64) string {
	return strconv.FormatFloat(float64(bytes)/BytesPerMB, 'f', 1, 64)
}

// FormatMBValue renders a user-supplied MB value without trailing zeros,
// the way it was typed ("10", "0.5").
func FormatMBValue(mb float64) string {
	return strconv.FormatFloat(mb, 'f', -1, 64)
}

// MaskFingerprint masks a certificate fingerprint for display, keeping the
// first and last eight characters. Short values are returned unchanged.
func MaskFingerprint(s string) string {
	if len(s) <= 20 {
		return s
	}
	return fmt.Sprintf("%s...%s", s[:8], s[len(s)-8:])
}

// IsValidProfileName checks if a profile name contains only safe characters.
// Profile names become INI section names, so shell metacharacters and
// whitespace are rejected, as is the parser's reserved "DEFAULT" section
// name, which would not survive a save/load round trip.
func IsValidProfileName(name string) bool {
	if name == "" || len(name) > 128 || name == "DEFAULT" {
		return false
	}
	for _, r := range name {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.') {
			return false
		}
	}
	return true
}
