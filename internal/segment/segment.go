// Package segment splits parsed document text into per-country sections.
//
// Delegation lists render each member state as an all-caps heading followed
// by the delegation roster. The splitter is a line classifier: a line made
// of uppercase letters and heading separators opens a new section, anything
// else belongs to the most recent section's body.
package segment

import (
	"regexp"
	"strings"
)

// Chunk is one country's section of a document: the heading label and every
// non-blank line up to the next heading.
type Chunk struct {
	Label string
	Body  []string
}

// BodyText joins the body lines for handoff to the extraction call.
func (c Chunk) BodyText() string {
	return strings.Join(c.Body, "\n")
}

// headingPattern matches the all-caps country headings: uppercase letters
// plus the separators that appear in names like "GUINEA-BISSAU" and
// "SAINT KITTS AND NEVIS". Accented capitals fall outside the class and are
// missed; that imprecision is accepted rather than patched per-country.
var headingPattern = regexp.MustCompile(`^[A-Z][A-Z\s\-&,'\.]*$`)

// Split partitions text into ordered country chunks. Lines before the first
// heading are discarded. Adjacent headings yield an empty-bodied chunk for
// the first; a fully-capitalized data row inside a body still opens a new
// chunk. Zero detected headings returns an empty slice, not an error.
func Split(text string) []Chunk {
	var chunks []Chunk
	current := -1
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		// Parser markdown embeds HTML comments (page markers, anchors);
		// anything after the marker is noise, not roster text.
		if i := strings.Index(line, "<!--"); i >= 0 {
			line = strings.TrimSpace(line[:i])
			if line == "" {
				continue
			}
		}
		if headingPattern.MatchString(line) {
			chunks = append(chunks, Chunk{Label: normalizeLabel(line)})
			current = len(chunks) - 1
			continue
		}
		if current >= 0 {
			chunks[current].Body = append(chunks[current].Body, line)
		}
	}
	return chunks
}

// normalizeLabel collapses interior whitespace runs so "VIET  NAM" and
// "VIET NAM" carry the same label.
func normalizeLabel(line string) string {
	return strings.Join(strings.Fields(line), " ")
}
