package splits

import (
	"strings"

	"github.com/c-tram/cycle-splits/internal/columns"
	"github.com/c-tram/cycle-splits/internal/model"
	"github.com/c-tram/cycle-splits/internal/rows"
	"github.com/c-tram/cycle-splits/internal/tier"
)

// Query describes what the table shows: which category, how rows are
// ordered and filtered, and what tiers are judged against.
type Query struct {
	Kind    model.Kind
	SortKey string // column key or label, or "split" for the row label
	Dir     rows.Dir
	Filter  string
	// Baseline may be nil; classification then falls back to percentiles
	// over the displayed rows.
	Baseline *model.LeagueBaseline
}

// Cell is one rendered, classified value.
type Cell struct {
	Text   string    `json:"text"`
	Value  float64   `json:"value"`
	Tier   tier.Tier `json:"tier"`
	Tiered bool      `json:"tiered"`
}

type TableRow struct {
	Row   model.SplitRow `json:"-"`
	Key   string         `json:"key"`
	Label string         `json:"label"`
	Cells []Cell         `json:"cells"`
}

type TableGroup struct {
	Label string     `json:"label,omitempty"`
	Rows  []TableRow `json:"rows"`
}

// Table is a fully computed view, ready to render.
type Table struct {
	Kind    model.Kind       `json:"-"`
	Columns []columns.Column `json:"columns"`
	Groups  []TableGroup     `json:"groups"`
}

// Len is the number of displayed rows across all groups.
func (t Table) Len() int {
	n := 0
	for _, g := range t.Groups {
		n += len(g.Rows)
	}
	return n
}

// SplitGroups returns the displayed rows in display order, for export.
func (t Table) SplitGroups() []model.SplitGroup {
	out := make([]model.SplitGroup, len(t.Groups))
	for i, g := range t.Groups {
		out[i].Label = g.Label
		out[i].Rows = make([]model.SplitRow, len(g.Rows))
		for j, r := range g.Rows {
			out[i].Rows[j] = r.Row
		}
	}
	return out
}

// Explore filters and sorts every group, then classifies each tiered cell
// against q.Baseline or, where the baseline has no usable value, against
// the same column's values across all displayed rows.
func Explore(groups []model.SplitGroup, q Query) Table {
	cols := columns.For(q.Kind)
	get := accessor(q.Kind)

	shown := make([]model.SplitGroup, 0, len(groups))
	for _, g := range groups {
		rs := rows.Filter(g.Rows, q.Filter, func(r model.SplitRow) string { return r.Label })
		rs = rows.Sort(rs, q.SortKey, q.Dir, get)
		shown = append(shown, model.SplitGroup{Label: g.Label, Rows: rs})
	}

	samples := make([][]float64, len(cols))
	for i, c := range cols {
		if !c.Tiered {
			continue
		}
		for _, g := range shown {
			for _, r := range g.Rows {
				if v, ok := c.Value(q.Kind, r); ok {
					samples[i] = append(samples[i], v)
				}
			}
		}
	}

	t := Table{Kind: q.Kind, Columns: cols, Groups: make([]TableGroup, len(shown))}
	for gi, g := range shown {
		tg := TableGroup{Label: g.Label, Rows: make([]TableRow, len(g.Rows))}
		for ri, r := range g.Rows {
			cells := make([]Cell, len(cols))
			for ci, c := range cols {
				v, _ := c.Value(q.Kind, r)
				cell := Cell{Text: c.Cell(q.Kind, r), Value: v, Tier: tier.Average, Tiered: c.Tiered}
				if c.Tiered {
					cell.Tier = tier.Classify(c.Key, v, q.Baseline, samples[ci], q.Kind)
				}
				cells[ci] = cell
			}
			tg.Rows[ri] = TableRow{Row: r, Key: r.Key, Label: r.Label, Cells: cells}
		}
		t.Groups[gi] = tg
	}
	return t
}

// accessor resolves a sort key against kind's columns. "split" and "label"
// sort by the row label.
func accessor(kind model.Kind) rows.Accessor[model.SplitRow] {
	return func(r model.SplitRow, key string) rows.Field {
		switch strings.ToLower(key) {
		case "split", "label":
			return rows.Text(r.Label)
		}
		c, ok := columns.Find(kind, key)
		if !ok {
			return rows.Null()
		}
		v, ok := c.Value(kind, r)
		if !ok {
			return rows.Null()
		}
		return rows.Number(v)
	}
}
