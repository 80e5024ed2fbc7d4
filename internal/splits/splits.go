// Package splits turns a macro-split payload into grouped rows of derived
// stats and builds the classified, sorted and filtered table the surfaces
// render.
package splits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/c-tram/cycle-splits/internal/aggregator"
	"github.com/c-tram/cycle-splits/internal/derive"
	"github.com/c-tram/cycle-splits/internal/model"
)

// ErrUnknownView is returned for a view name outside Views().
var ErrUnknownView = errors.New("unknown split view")

// View names one way of slicing the payload.
type View string

const (
	Location          View = "location"
	Handedness        View = "handedness"
	Teams             View = "teams"
	Pitchers          View = "pitchers"
	Counts            View = "counts"
	CountVsTeam       View = "count-vs-team"
	CountVsHandedness View = "count-vs-handedness"
	HandednessVsTeam  View = "handedness-vs-team"
)

// Views lists every view in menu order.
func Views() []View {
	return []View{Location, Handedness, Teams, Pitchers, Counts, CountVsTeam, CountVsHandedness, HandednessVsTeam}
}

// ParseView resolves a view name case-insensitively.
func ParseView(s string) (View, error) {
	for _, v := range Views() {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Compound views emit one group per outer key.
func (v View) Compound() bool {
	switch v {
	case CountVsTeam, CountVsHandedness, HandednessVsTeam:
		return true
	}
	return false
}

// path is where the view's buckets live in the payload.
func (v View) path() string {
	switch v {
	case Location:
		return "by_location"
	case Handedness:
		return "vs_handedness"
	case Teams:
		return "vs_teams"
	case Pitchers:
		return "vs_pitchers"
	case Counts:
		return "by_count"
	case CountVsTeam:
		return "compound.count_vs_team"
	case CountVsHandedness:
		return "compound.count_vs_handedness"
	case HandednessVsTeam:
		return "compound.handedness_vs_team"
	}
	return ""
}

// Payload is one parsed macro-split response. It is read-only.
type Payload struct {
	root gjson.Result
}

// Parse validates body as JSON. Invalid JSON is the only error; missing
// sections simply produce empty views.
func Parse(body []byte) (Payload, error) {
	if !gjson.ValidBytes(body) {
		return Payload{}, errors.New("parse splits: invalid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return Payload{}, errors.New("parse splits: payload is not an object")
	}
	return Payload{root: root}, nil
}

// Available lists the views that have at least one bucket.
func (p Payload) Available() []View {
	var out []View
	for _, v := range Views() {
		if len(p.Keys(v)) > 0 {
			out = append(out, v)
		}
	}
	return out
}

// Keys returns the bucket keys of a flat view, or the outer keys of a
// compound view, in display order.
func (p Payload) Keys(v View) []string {
	section := p.root.Get(v.path())
	switch v {
	case Location:
		return present(section, "home", "away")
	case Handedness:
		return present(section, "L", "R")
	}
	return objectKeys(section)
}

// Groups derives the rows of view v. Flat views return a single unlabeled
// group.
func (p Payload) Groups(v View) ([]model.SplitGroup, error) {
	if v.path() == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, v)
	}
	section := p.root.Get(v.path())

	if !v.Compound() {
		return []model.SplitGroup{{Rows: p.flatRows(v, section)}}, nil
	}

	outer := p.Keys(v)
	groups := make([]model.SplitGroup, 0, len(outer))
	for _, ok := range outer {
		inner := section.Get(gjson.Escape(ok))
		g := model.SplitGroup{Label: outerLabel(v, ok)}
		for _, ik := range innerKeys(v, inner) {
			node := inner.Get(gjson.Escape(ik))
			g.Rows = append(g.Rows, bucketRow(ik, innerLabel(v, ik), node))
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (p Payload) flatRows(v View, section gjson.Result) []model.SplitRow {
	keys := p.Keys(v)
	rows := make([]model.SplitRow, 0, len(keys))
	for _, k := range keys {
		node := section.Get(gjson.Escape(k))
		rows = append(rows, bucketRow(k, flatLabel(v, k, node), node))
	}
	return rows
}

// Combine aggregates the named buckets of a flat view into one row. Counting
// stats are summed first and rates re-derived from the totals. Keys that do
// not exist in the view are ignored; it is an error when none match.
func (p Payload) Combine(v View, keys []string, label string) (model.SplitRow, error) {
	if v.path() == "" {
		return model.SplitRow{}, fmt.Errorf("%w: %q", ErrUnknownView, v)
	}
	if v.Compound() {
		return model.SplitRow{}, fmt.Errorf("combine %s: compound views cannot be combined", v)
	}
	section := p.root.Get(v.path())

	buckets := make(map[string]gjson.Result)
	var matched []string
	for _, k := range keys {
		node := section.Get(gjson.Escape(k))
		if !node.IsObject() {
			continue
		}
		matched = append(matched, k)
		for bk, bn := range expand(k, node) {
			buckets[bk] = bn
		}
	}
	if len(matched) == 0 {
		return model.SplitRow{}, fmt.Errorf("combine %s: none of %v found", v, keys)
	}
	if label == "" {
		label = strings.Join(matched, " + ")
	}
	return model.SplitRow{
		Key:      strings.Join(matched, "+"),
		Label:    label,
		Batting:  derive.Batting(aggregator.BattingBuckets(buckets)),
		Pitching: derive.Pitching(aggregator.PitchingBuckets(buckets)),
	}, nil
}

// bucketRow derives one row. A node made of home/away sub-buckets (teams)
// is aggregated from those; anything else is derived directly.
func bucketRow(key, label string, node gjson.Result) model.SplitRow {
	parts := expand(key, node)
	if len(parts) == 1 {
		for _, only := range parts {
			return derive.Row(key, label, only)
		}
	}
	return model.SplitRow{
		Key:      key,
		Label:    label,
		Batting:  derive.Batting(aggregator.BattingBuckets(parts)),
		Pitching: derive.Pitching(aggregator.PitchingBuckets(parts)),
	}
}

// expand splits a {home, away} node into its sub-buckets, keyed "key/home"
// and "key/away". Other nodes come back as a single bucket.
func expand(key string, node gjson.Result) map[string]gjson.Result {
	home, away := node.Get("home"), node.Get("away")
	if !home.IsObject() && !away.IsObject() {
		return map[string]gjson.Result{key: node}
	}
	out := make(map[string]gjson.Result, 2)
	if home.IsObject() {
		out[key+"/home"] = home
	}
	if away.IsObject() {
		out[key+"/away"] = away
	}
	return out
}

func innerKeys(v View, inner gjson.Result) []string {
	if v == CountVsHandedness {
		return present(inner, "L", "R")
	}
	return objectKeys(inner)
}

func flatLabel(v View, key string, node gjson.Result) string {
	switch v {
	case Location:
		if key == "home" {
			return "Home"
		}
		return "Away"
	case Handedness:
		return handLabel(key)
	case Teams:
		return "vs " + key
	case Pitchers:
		if name := node.Get("name"); name.Type == gjson.String && name.Str != "" {
			return name.Str
		}
		return key
	}
	return key
}

func outerLabel(v View, key string) string {
	if v == HandednessVsTeam {
		return handLabel(key)
	}
	return "Count " + key
}

func innerLabel(v View, key string) string {
	if v == CountVsHandedness {
		return handLabel(key)
	}
	return "vs " + key
}

func handLabel(key string) string {
	switch key {
	case "L":
		return "vs Left"
	case "R":
		return "vs Right"
	}
	return "vs " + key
}

// present returns those of keys that hold an object in section, in the
// order given.
func present(section gjson.Result, keys ...string) []string {
	var out []string
	for _, k := range keys {
		if section.Get(k).IsObject() {
			out = append(out, k)
		}
	}
	return out
}

// objectKeys returns the keys of section whose values are objects, in
// document order.
func objectKeys(section gjson.Result) []string {
	if !section.IsObject() {
		return nil
	}
	var out []string
	section.ForEach(func(k, v gjson.Result) bool {
		if v.IsObject() {
			out = append(out, k.String())
		}
		return true
	})
	return out
}
