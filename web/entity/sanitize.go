package entity

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/mhsanaei/userhub/util/crypto"
)

const (
	MaxNameLength     = 100
	MaxEmailLength    = 254
	MinPasswordLength = 8
)

var (
	stripChars = strings.NewReplacer("<", "", ">", "", "{", "", "}", "")
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func clean(s string) string {
	return strings.TrimSpace(stripChars.Replace(html.EscapeString(s)))
}

// SanitizeName escapes HTML, drops <>{} and surrounding space, and truncates
// to MaxNameLength characters.
func SanitizeName(s string) string {
	if s == "" {
		return s
	}
	return truncate(clean(s), MaxNameLength)
}

// SanitizeEmail is SanitizeName's treatment plus lowercasing. Truncation to
// MaxEmailLength happens after the format check.
func SanitizeEmail(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(clean(s))
}

// ValidEmail reports whether s has a plausible address shape.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// PasswordProblem returns why p breaks the password policy, or "".
func PasswordProblem(p string) string {
	if len(p) < MinPasswordLength {
		return "Password must be at least 8 characters long"
	}
	if len(p) > crypto.MaxPasswordLength {
		return "Password must be at most 72 bytes long"
	}
	var digit, letter bool
	for _, r := range p {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLetter(r):
			letter = true
		}
	}
	if !digit {
		return "Password must contain at least one digit"
	}
	if !letter {
		return "Password must contain at least one letter"
	}
	return ""
}
