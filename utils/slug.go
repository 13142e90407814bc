package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLength = 80

// Slugify turns a title into a URL path segment: "Edição de Março!" becomes
// "edicao-de-marco".
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, title)
	if err != nil {
		plain = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimSuffix(slug[:maxSlugLength], "-")
	}
	return slug
}
