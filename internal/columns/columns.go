// Package columns defines the fixed column sets for batting and pitching
// tables. The terminal report, the CSV export and the JSON API all render
// from these.
package columns

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c-tram/cycle-splits/internal/model"
)

// Format selects how a column value is printed.
type Format int

const (
	Count   Format = iota // integer
	Average               // .300 (three places, no leading zero)
	Rate                  // 3.45 (two places)
	Percent               // 22.1%
	Thirds                // innings in W.f notation
)

// Column is one displayed stat.
type Column struct {
	// Key is the stat key understood by model.SplitRow.Value.
	Key    string `json:"key"`
	Label  string `json:"label"`
	Format Format `json:"-"`
	// Tiered columns get a quality tier; raw counts do not.
	Tiered bool `json:"tiered"`
}

var batting = []Column{
	{Key: "pa", Label: "PA", Format: Count},
	{Key: "atBats", Label: "AB", Format: Count},
	{Key: "hits", Label: "H", Format: Count},
	{Key: "doubles", Label: "2B", Format: Count},
	{Key: "triples", Label: "3B", Format: Count},
	{Key: "homeRuns", Label: "HR", Format: Count},
	{Key: "baseOnBalls", Label: "BB", Format: Count},
	{Key: "strikeOuts", Label: "SO", Format: Count},
	{Key: "avg", Label: "AVG", Format: Average, Tiered: true},
	{Key: "obp", Label: "OBP", Format: Average, Tiered: true},
	{Key: "slg", Label: "SLG", Format: Average, Tiered: true},
	{Key: "ops", Label: "OPS", Format: Average, Tiered: true},
	{Key: "kRate", Label: "K%", Format: Percent, Tiered: true},
	{Key: "bbRate", Label: "BB%", Format: Percent, Tiered: true},
}

var pitching = []Column{
	{Key: "innings", Label: "IP", Format: Thirds},
	{Key: "era", Label: "ERA", Format: Rate, Tiered: true},
	{Key: "whip", Label: "WHIP", Format: Rate, Tiered: true},
	{Key: "fip", Label: "FIP", Format: Rate, Tiered: true},
	{Key: "k9", Label: "K/9", Format: Rate, Tiered: true},
	{Key: "bb9", Label: "BB/9", Format: Rate, Tiered: true},
	{Key: "strikeOuts", Label: "SO", Format: Count},
	{Key: "baseOnBalls", Label: "BB", Format: Count},
	{Key: "hits", Label: "H", Format: Count},
	{Key: "homeRuns", Label: "HR", Format: Count},
	{Key: "kRate", Label: "K%", Format: Percent, Tiered: true},
	{Key: "bbRate", Label: "BB%", Format: Percent, Tiered: true},
	{Key: "battersFaced", Label: "BF", Format: Count},
}

// For returns the column set for kind. The returned slice must not be modified.
func For(kind model.Kind) []Column {
	if kind == model.Pitching {
		return pitching
	}
	return batting
}

// Find looks a column up by stat key or by label, case-insensitively.
func Find(kind model.Kind, name string) (Column, bool) {
	for _, c := range For(kind) {
		if strings.EqualFold(c.Key, name) || strings.EqualFold(c.Label, name) {
			return c, true
		}
	}
	return Column{}, false
}

// Labels returns the column labels in display order.
func Labels(kind model.Kind) []string {
	cols := For(kind)
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Label
	}
	return out
}

// Value reads the column's number from row.
func (c Column) Value(kind model.Kind, row model.SplitRow) (float64, bool) {
	return row.Value(kind, c.Key)
}

// Cell formats the column's value for row, or "" when the row has no such stat.
func (c Column) Cell(kind model.Kind, row model.SplitRow) string {
	if c.Format == Thirds && kind == model.Pitching {
		return row.Pitching.Innings.String()
	}
	v, ok := c.Value(kind, row)
	if !ok {
		return ""
	}
	return c.FormatValue(v)
}

// FormatValue prints v the way the column displays it.
func (c Column) FormatValue(v float64) string {
	switch c.Format {
	case Count:
		return strconv.Itoa(int(v))
	case Average:
		return trimLeadingZero(fmt.Sprintf("%.3f", v))
	case Percent:
		return fmt.Sprintf("%.1f%%", v*100)
	case Thirds:
		return model.InningsFromOuts(int(v*3 + 0.5)).String()
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// trimLeadingZero turns "0.300" into ".300" and "-0.012" into "-.012".
func trimLeadingZero(s string) string {
	if strings.HasPrefix(s, "0.") {
		return s[1:]
	}
	if strings.HasPrefix(s, "-0.") {
		return "-" + s[2:]
	}
	return s
}
