package utils

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// NormalizeLocale canonicalizes a locale code to "lang" or "lang-AREA".
// Everything after the first "." is dropped and "-" or "_" separate language and area.
func NormalizeLocale(locale string) (canonical, lang, area string) {
	langArea, _, _ := strings.Cut(locale, ".")
	parts := strings.Split(strings.ReplaceAll(langArea, "_", "-"), "-")
	lang = strings.ToLower(parts[0])
	if len(parts) > 1 {
		area = strings.ToUpper(parts[1])
	}
	if area != "" {
		return lang + "-" + area, lang, area
	}
	return lang, lang, area
}

// CheckLocale reports whether a canonical locale code is a well-formed BCP 47 tag.
func CheckLocale(locale string) error {
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("locale %q is not a valid language tag: %w", locale, err)
	}
	return nil
}

// EscapeRegExp escapes regular expression metacharacters so the result can be
// embedded in generated JavaScript. Hyphens are written as \x2d.
func EscapeRegExp(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '|', '/', '\\', '{', '}', '(', ')', '[', ']', '^', '$', '+', '*', '?', '.':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '-':
			b.WriteString(`\x2d`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
