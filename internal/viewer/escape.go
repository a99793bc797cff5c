package viewer

import "strings"

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// Escape returns s with the markup-significant characters & < > ' and "
// replaced by named entities.
func Escape(s string) string {
	return escaper.Replace(s)
}

var linkSchemes = []string{"http://", "https://", "ftp://", "ftps://"}

// IsURL reports whether s starts with one of the recognised link schemes.
func IsURL(s string) bool {
	for _, scheme := range linkSchemes {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}
