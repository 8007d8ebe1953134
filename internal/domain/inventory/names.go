package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// FoldName normaliza un nombre de depósito o familia para comparaciones:
// trim, sin tildes y en minúsculas ("Inmunoanálisis " → "inmunoanalisis").
func FoldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return folder.String(out)
}

// SameName compara dos nombres ignorando mayúsculas, tildes y espacios externos.
func SameName(a, b string) bool {
	return FoldName(a) == FoldName(b)
}

// ContainsName indica si name contiene marker con la misma normalización.
func ContainsName(name, marker string) bool {
	m := FoldName(marker)
	if m == "" {
		return false
	}
	return strings.Contains(FoldName(name), m)
}
