// Package sanitize holds pure text-shape checks and best-effort markup
// stripping applied to user input before it reaches storage.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	scriptBlockRe  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	tagRe          = regexp.MustCompile(`<[^>]*>`)
	jsSchemeRe     = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerRe = regexp.MustCompile(`(?i)\bon\w+\s*=`)
	emailRe        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	unsafeFileRe   = regexp.MustCompile(`[^A-Za-z0-9.-]`)
)

// Markup strips script blocks, remaining angle-bracket tags, javascript:
// scheme substrings and inline event-handler attributes from text. It is a
// heuristic filter, not an HTML parser; obfuscated markup can slip through.
func Markup(text string) string {
	text = scriptBlockRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, "")
	text = jsSchemeRe.ReplaceAllString(text, "")
	text = eventHandlerRe.ReplaceAllString(text, "")
	return text
}

// Quoting removes control characters and doubles both quote kinds.
// Defense in depth only; every repository query uses parameter binding.
func Quoting(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case 0x00, '\n', '\r', '\b', '\t', '\f', '\v', 0x1a:
			continue
		case '\'':
			b.WriteString("''")
		case '"':
			b.WriteString(`""`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidEmail reports whether s looks like an email address: a single @
// separating non-whitespace runs, with a dot in the domain part. It is a
// shape check, not an RFC validator.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// PasswordOK reports whether the password length is within [6,128].
func PasswordOK(s string) bool {
	n := len(s)
	return n >= 6 && n <= 128
}

// LengthInRange reports whether the trimmed length of s is within
// [min,max] inclusive, counted in runes.
func LengthInRange(s string, min, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= min && n <= max
}

// FileName rewrites s so it is safe to use as a single path component:
// anything outside [A-Za-z0-9.-] becomes an underscore, then every ".."
// collapses to an underscore.
func FileName(s string) string {
	s = unsafeFileRe.ReplaceAllString(s, "_")
	return strings.ReplaceAll(s, "..", "_")
}
