// Package countries reconciles country names across datasets.
//
// The same member state appears under different renderings depending on the
// source document and year: "Côte d'Ivoire", "COTE D'IVOIRE", "Cote d Ivoire".
// Key collapses all of them to one join key so delegation and contribution
// records can be matched without ever rewriting the display name.
package countries

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented characters and removes the combining marks,
// so "ô" reduces to "o" before the ASCII filter runs.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Key returns the normalized join key for a country name: lower-cased,
// accents stripped, every character outside a-z removed. Keys are used only
// for matching; they never appear in output.
func Key(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		// Transform only fails on malformed UTF-8; the ASCII filter below
		// drops whatever survives, so fall through with the lowered input.
		stripped = lowered
	}
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Title renders a country name for export: "SIERRA LEONE" becomes
// "Sierra Leone". Source casing is all-caps headings, so this is applied
// once at export time, never to the stored records.
func Title(name string) string {
	return cases.Title(language.English).String(strings.ToLower(name))
}
