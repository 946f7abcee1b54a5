// Package tables locates and flattens the data tables embedded in parsed
// document markdown.
//
// The hosted parser renders tables as inline HTML inside the markdown
// stream; the self-hosted parser emits GitHub-style pipe tables. Both are
// flattened to rectangular string grids with colspan padding so that column
// positions survive the spanning super-headers the contribution reports use.
package tables

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Table is one flattened document table. Headers is the first rendered row;
// Rows hold the remaining cells in document order. A table that rendered a
// single row carries it in Rows with nil Headers.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Width reports the header width, or the widest row when headers are absent.
func (t Table) Width() int {
	w := len(t.Headers)
	for _, r := range t.Rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

var tablePattern = regexp.MustCompile(`(?is)<table[^>]*>.*?</table>`)

// Find returns every table in the markdown, HTML tables first in document
// order, then pipe tables. A document with no tables returns an empty slice.
func Find(markdown string) []Table {
	found := FindHTML(markdown)
	return append(found, FindPipe(markdown)...)
}

// FindHTML extracts the inline <table> blocks. Malformed blocks that cannot
// be parsed are skipped rather than failing the document.
func FindHTML(markdown string) []Table {
	var out []Table
	for _, block := range tablePattern.FindAllString(markdown, -1) {
		t, ok := flattenHTML(block)
		if !ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

// flattenHTML renders one HTML table block as a grid. Cells spanning n
// columns contribute their text once followed by n-1 empty cells, keeping
// later columns at their rendered positions. Header rows (thead) come
// first, then body rows.
func flattenHTML(block string) (Table, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(block))
	if err != nil {
		return Table{}, false
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return Table{}, false
	}

	var grid [][]string
	table.Find("thead tr").Each(func(_ int, tr *goquery.Selection) {
		grid = append(grid, flattenRow(tr))
	})
	body := table.Find("tbody tr")
	if body.Length() > 0 {
		body.Each(func(_ int, tr *goquery.Selection) {
			grid = append(grid, flattenRow(tr))
		})
	} else {
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if tr.ParentsFiltered("thead").Length() > 0 {
				return
			}
			grid = append(grid, flattenRow(tr))
		})
	}

	if len(grid) == 0 {
		return Table{}, false
	}
	if len(grid) == 1 {
		return Table{Rows: grid}, true
	}
	headers := grid[0]
	rows := grid[1:]
	padRows(rows, len(headers))
	return Table{Headers: headers, Rows: rows}, true
}

func flattenRow(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		colspan, _ := strconv.Atoi(cell.AttrOr("colspan", "1"))
		if colspan < 1 {
			colspan = 1
		}
		cells = append(cells, strings.TrimSpace(cell.Text()))
		for i := 1; i < colspan; i++ {
			cells = append(cells, "")
		}
	})
	return cells
}

// padRows right-pads short rows with empty cells to the header width. Rows
// wider than the headers are left alone; readers bounds-check by index.
func padRows(rows [][]string, width int) {
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
}
