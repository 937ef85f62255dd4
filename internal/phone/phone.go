package phone

import (
	"regexp"
	"strings"
	"unicode"
)

// Canonical Bangladeshi mobile format: country code 880, operator prefix 1,
// nine subscriber digits. No leading "+".
var bdMobile = regexp.MustCompile(`^8801\d{9}$`)

// Normalize strips whitespace and hyphens and drops a single leading "+".
// It does not validate; feed the result to IsValid.
func Normalize(input string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, input)
	return strings.TrimPrefix(cleaned, "+")
}

// IsValid reports whether the input normalizes to a canonical Bangladeshi
// mobile number.
func IsValid(input string) bool {
	return bdMobile.MatchString(Normalize(input))
}
