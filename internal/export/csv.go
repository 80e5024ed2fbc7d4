// Package export serializes split tables to CSV.
package export

import (
	"bufio"
	"io"
	"strings"

	"github.com/c-tram/cycle-splits/internal/columns"
	"github.com/c-tram/cycle-splits/internal/model"
)

// WriteCSV writes groups as CSV using kind's column set. The header is
// "Split" followed by the column labels. A group with a label is preceded by
// a "# <label>" line and followed by a blank line; an unlabeled group is
// written as plain rows.
func WriteCSV(w io.Writer, kind model.Kind, groups []model.SplitGroup) error {
	bw := bufio.NewWriter(w)
	cols := columns.For(kind)

	header := make([]string, 0, len(cols)+1)
	header = append(header, "Split")
	header = append(header, columns.Labels(kind)...)
	writeLine(bw, header)

	cells := make([]string, len(cols)+1)
	for _, g := range groups {
		if g.Label != "" {
			bw.WriteString("# " + headingLabel(g.Label) + "\n")
		}
		for _, r := range g.Rows {
			cells[0] = r.Label
			for i, c := range cols {
				cells[i+1] = c.Cell(kind, r)
			}
			writeLine(bw, cells)
		}
		if g.Label != "" {
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headingLabel keeps a group heading on one line.
func headingLabel(label string) string {
	return lineBreaks.Replace(label)
}

// String is WriteCSV into a string.
func String(kind model.Kind, groups []model.SplitGroup) string {
	var sb strings.Builder
	_ = WriteCSV(&sb, kind, groups)
	return sb.String()
}

func writeLine(bw *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteString(Escape(f))
	}
	bw.WriteByte('\n')
}

// Escape quotes s when it contains a comma, a double quote, CR or LF,
// doubling any embedded quotes. Other values pass through unchanged.
func Escape(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
