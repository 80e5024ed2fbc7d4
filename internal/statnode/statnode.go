// Package statnode turns the backend's loosely shaped stat objects into the
// canonical counting-stat structs. The same numbers can sit at the node's top
// level, under .batting/.pitching or under .stats.batting/.stats.pitching, and
// a few fields arrive under synonym names.
package statnode

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/c-tram/cycle-splits/internal/model"
)

// synonyms maps a canonical field to the alternate names the backend uses.
var synonyms = map[string][]string{
	"baseOnBalls": {"walks"},
	"strikeOuts":  {"strikeouts"},
}

// Locate returns the object holding kind's stats: stats.<kind>, then <kind>,
// then the node itself. A node with no object at any of those paths yields an
// empty result, which reads as all zeros.
func Locate(node gjson.Result, kind model.Kind) gjson.Result {
	name := kind.String()
	if r := node.Get("stats." + name); r.IsObject() {
		return r
	}
	if r := node.Get(name); r.IsObject() {
		return r
	}
	if node.IsObject() {
		return node
	}
	return gjson.Result{}
}

// Batting extracts canonical batting counts from node.
func Batting(node gjson.Result) model.BattingCounts {
	obj := Locate(node, model.Batting)
	return model.BattingCounts{
		AtBats:           Int(field(obj, "atBats")),
		Hits:             Int(field(obj, "hits")),
		Doubles:          Int(field(obj, "doubles")),
		Triples:          Int(field(obj, "triples")),
		HomeRuns:         Int(field(obj, "homeRuns")),
		BaseOnBalls:      Int(field(obj, "baseOnBalls")),
		StrikeOuts:       Int(field(obj, "strikeOuts")),
		HitByPitch:       Int(field(obj, "hitByPitch")),
		SacrificeFlies:   Int(field(obj, "sacrificeFlies")),
		PlateAppearances: OptInt(field(obj, "plateAppearances")),
		Singles:          OptInt(field(obj, "singles")),
		TotalBases:       OptInt(field(obj, "totalBases")),
		AVG:              OptFloat(field(obj, "avg")),
		OBP:              OptFloat(field(obj, "obp")),
		SLG:              OptFloat(field(obj, "slg")),
		OPS:              OptFloat(field(obj, "ops")),
	}
}

// Pitching extracts canonical pitching counts from node.
func Pitching(node gjson.Result) model.PitchingCounts {
	obj := Locate(node, model.Pitching)
	return model.PitchingCounts{
		Innings:      Innings(field(obj, "inningsPitched")),
		EarnedRuns:   Int(field(obj, "earnedRuns")),
		Hits:         Int(field(obj, "hits")),
		HomeRuns:     Int(field(obj, "homeRuns")),
		BaseOnBalls:  Int(field(obj, "baseOnBalls")),
		StrikeOuts:   Int(field(obj, "strikeOuts")),
		BattersFaced: Int(field(obj, "battersFaced")),
		ERA:          OptFloat(field(obj, "era")),
		WHIP:         OptFloat(field(obj, "whip")),
		FIP:          OptFloat(field(obj, "fip")),
	}
}

// field reads canonical from obj, falling back to its synonyms only when the
// canonical name is absent or null.
func field(obj gjson.Result, canonical string) gjson.Result {
	if !obj.IsObject() {
		return gjson.Result{}
	}
	if r := obj.Get(canonical); present(r) {
		return r
	}
	for _, alt := range synonyms[canonical] {
		if r := obj.Get(alt); present(r) {
			return r
		}
	}
	return gjson.Result{}
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

// Float reads a JSON number or numeric string ("0.275", ".275"). Anything else
// is reported as not ok.
func Float(r gjson.Result) (float64, bool) {
	var f float64
	switch r.Type {
	case gjson.Number:
		f = r.Num
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0, false
		}
		f = v
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int reads a counting stat, rounding to the nearest integer. Missing or
// malformed values are 0.
func Int(r gjson.Result) int {
	f, ok := Float(r)
	if !ok {
		return 0
	}
	return int(math.Round(f))
}

// OptInt is Int that keeps "absent" distinct from zero.
func OptInt(r gjson.Result) *int {
	f, ok := Float(r)
	if !ok {
		return nil
	}
	v := int(math.Round(f))
	return &v
}

// OptFloat keeps "absent" distinct from zero for backend-computed rates.
func OptFloat(r gjson.Result) *float64 {
	f, ok := Float(r)
	if !ok {
		return nil
	}
	return &f
}

// Innings reads innings pitched in thirds notation from either a string
// ("6.2") or a bare JSON number (6.2). Numbers are read from their raw text so
// the thirds digit is never disturbed by float formatting.
func Innings(r gjson.Result) model.Innings {
	switch r.Type {
	case gjson.String:
		return model.ParseInnings(r.Str)
	case gjson.Number:
		return model.ParseInnings(r.Raw)
	}
	return 0
}
