package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/c-tram/cycle-splits/internal/model"
	"github.com/c-tram/cycle-splits/internal/session"
	"github.com/c-tram/cycle-splits/internal/splits"
	"github.com/c-tram/cycle-splits/internal/tier"
)

var (
	cElite = color.New(color.FgGreen, color.Bold)
	cAbove = color.New(color.FgGreen)
	cBelow = color.New(color.FgYellow)
	cPoor  = color.New(color.FgRed)
	cMuted = color.New(color.FgHiBlack)
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// Paint colors text by tier. Average and untiered cells are left plain.
func Paint(t tier.Tier, text string) string {
	switch t {
	case tier.Elite:
		return cElite.Sprint(text)
	case tier.AboveAverage:
		return cAbove.Sprint(text)
	case tier.BelowAverage:
		return cBelow.Sprint(text)
	case tier.Poor:
		return cPoor.Sprint(text)
	}
	return text
}

// PrintHeader prints a one-line summary of what is on screen.
func PrintHeader(w io.Writer, st session.Status, view splits.View, kind model.Kind) {
	sel := "—"
	if st.Selection != nil {
		sel = st.Selection.String()
	}
	baseline := "percentile tiers"
	switch {
	case st.HasBaseline:
		baseline = fmt.Sprintf("vs %d league average", st.Season)
	case st.BaselineState == session.Failed:
		baseline = "baseline unavailable, percentile tiers"
	}
	fmt.Fprintf(w, "\n%s  |  View: %s  |  %s  |  Tiers: %s\n\n", sel, view, kind, baseline)
}

// PrintSplitTable renders a computed table. Compound views print one table
// per group under its label.
func PrintSplitTable(w io.Writer, t splits.Table) {
	if t.Len() == 0 {
		fmt.Fprintln(w, cMuted.Sprint("(no rows)"))
		return
	}
	header := make([]any, 0, len(t.Columns)+1)
	header = append(header, "SPLIT")
	for _, c := range t.Columns {
		header = append(header, c.Label)
	}

	for _, g := range t.Groups {
		if len(g.Rows) == 0 {
			continue
		}
		if g.Label != "" {
			fmt.Fprintf(w, "── %s ──\n", g.Label)
		}
		table := newTable(w)
		table.Header(header...)
		for _, r := range g.Rows {
			cells := make([]any, 0, len(r.Cells)+1)
			cells = append(cells, r.Label)
			for _, c := range r.Cells {
				text := c.Text
				if text == "" {
					text = "—"
				}
				if c.Tiered {
					text = Paint(c.Tier, text)
				}
				cells = append(cells, text)
			}
			table.Append(cells...)
		}
		table.Render()
		if g.Label != "" {
			fmt.Fprintln(w)
		}
	}
}

// PrintLegend prints the tier color key.
func PrintLegend(w io.Writer) {
	fmt.Fprintf(w, "Tiers: %s  %s  %s  %s  %s\n",
		Paint(tier.Elite, tier.Elite.String()),
		Paint(tier.AboveAverage, tier.AboveAverage.String()),
		tier.Average.String(),
		Paint(tier.BelowAverage, tier.BelowAverage.String()),
		Paint(tier.Poor, tier.Poor.String()),
	)
}

// PrintBaseline prints a season's league averages.
func PrintBaseline(w io.Writer, b *model.LeagueBaseline) {
	fmt.Fprintf(w, "\nLeague baseline %d\n\n", b.Season)

	table := newTable(w)
	table.Header("CONTEXT", "STAT", "VALUE")
	for _, key := range []string{"avg", "obp", "slg", "ops", "kRate", "bbRate"} {
		table.Append("batting", key, baselineCell(b, model.Batting, key))
	}
	for _, key := range []string{"era", "whip", "fip", "k9", "bb9"} {
		table.Append("pitching", key, baselineCell(b, model.Pitching, key))
	}
	table.Render()

	t := b.Pitching.Totals
	if t.Innings > 0 {
		fmt.Fprintf(w, "Pitching totals: %s IP, %d SO, %d BB\n", t.Innings, t.StrikeOuts, t.BaseOnBalls)
	}
}

func baselineCell(b *model.LeagueBaseline, kind model.Kind, key string) string {
	v, ok := b.Lookup(kind, key)
	if !ok {
		return "—"
	}
	switch key {
	case "avg", "obp", "slg", "ops":
		return fmt.Sprintf("%.3f", v)
	case "kRate", "bbRate":
		return fmt.Sprintf("%.1f%%", v*100)
	}
	return fmt.Sprintf("%.2f", v)
}

// PrintCandidates prints player search results.
func PrintCandidates(w io.Writer, hits []model.Candidate) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No players found.")
		return
	}
	table := newTable(w)
	table.Header("ID", "NAME", "TEAM", "POS")
	for _, c := range hits {
		table.Append(c.ID, c.Name, dash(c.Team), dash(c.Position))
	}
	table.Render()
}

// PrintRecent prints recent selections, most recent first.
func PrintRecent(w io.Writer, recent []model.Selection) {
	if len(recent) == 0 {
		fmt.Fprintln(w, cMuted.Sprint("(nothing loaded yet)"))
		return
	}
	for i, s := range recent {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, s)
	}
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
