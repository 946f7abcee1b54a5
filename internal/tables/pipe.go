package tables

import "strings"

// FindPipe extracts GitHub-style pipe tables from markdown. A table is a
// run of consecutive lines starting and ending with '|'; the separator row
// of dashes under the header is dropped.
func FindPipe(markdown string) []Table {
	var out []Table
	var block [][]string
	flush := func() {
		if t, ok := buildPipeTable(block); ok {
			out = append(out, t)
		}
		block = nil
	}
	for _, raw := range strings.Split(markdown, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|") && len(line) > 1 {
			block = append(block, splitPipeRow(line))
			continue
		}
		flush()
	}
	flush()
	return out
}

func buildPipeTable(block [][]string) (Table, bool) {
	var rows [][]string
	for _, cells := range block {
		if isSeparatorRow(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	if len(rows) < 2 {
		return Table{}, false
	}
	headers := rows[0]
	body := rows[1:]
	padRows(body, len(headers))
	return Table{Headers: headers, Rows: body}, true
}

func splitPipeRow(line string) []string {
	inner := strings.Trim(line, "|")
	parts := strings.Split(inner, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// isSeparatorRow reports whether every cell is a dash/colon alignment
// marker, e.g. "---", ":--", "--:".
func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if c == "" {
			return false
		}
		for _, r := range c {
			if r != '-' && r != ':' {
				return false
			}
		}
	}
	return true
}
