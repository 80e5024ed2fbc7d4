// Package aggregator sums counting stats across situational buckets (several
// opponents, both home and away, ...) so rates can be re-derived from totals.
// Rates are never averaged.
package aggregator

import (
	"sort"

	"github.com/tidwall/gjson"

	"github.com/c-tram/cycle-splits/internal/model"
	"github.com/c-tram/cycle-splits/internal/statnode"
)

// BattingBuckets normalizes every bucket and sums its counting stats.
func BattingBuckets(buckets map[string]gjson.Result) model.BattingCounts {
	counts := make([]model.BattingCounts, 0, len(buckets))
	for _, key := range sortedKeys(buckets) {
		counts = append(counts, statnode.Batting(buckets[key]))
	}
	return SumBatting(counts)
}

// PitchingBuckets normalizes every bucket and sums its counting stats,
// adding innings as outs.
func PitchingBuckets(buckets map[string]gjson.Result) model.PitchingCounts {
	counts := make([]model.PitchingCounts, 0, len(buckets))
	for _, key := range sortedKeys(buckets) {
		counts = append(counts, statnode.Pitching(buckets[key]))
	}
	return SumPitching(counts)
}

// SumBatting adds already-normalized batting counts.
//
// Plate appearances, singles and total bases are summed per bucket after each
// bucket's own fallback is resolved, which equals recomputing them from the
// summed components when no bucket supplied them. A lone bucket keeps its
// backend rates so aggregating it reproduces its direct derivation; two or
// more buckets drop them and the rates are re-derived from the sums.
func SumBatting(counts []model.BattingCounts) model.BattingCounts {
	if len(counts) == 1 {
		return counts[0]
	}

	var out model.BattingCounts
	var pa, singles, tb int
	for _, c := range counts {
		out.AtBats += c.AtBats
		out.Hits += c.Hits
		out.Doubles += c.Doubles
		out.Triples += c.Triples
		out.HomeRuns += c.HomeRuns
		out.BaseOnBalls += c.BaseOnBalls
		out.StrikeOuts += c.StrikeOuts
		out.HitByPitch += c.HitByPitch
		out.SacrificeFlies += c.SacrificeFlies

		pa += c.ResolvedPA()
		singles += c.ResolvedSingles()
		tb += c.ResolvedTotalBases()
	}
	out.PlateAppearances = &pa
	out.Singles = &singles
	out.TotalBases = &tb
	return out
}

// SumPitching adds already-normalized pitching counts. Innings are stored as
// outs, so two "1.2" buckets (5 outs each) sum to 10 outs = "3.1".
func SumPitching(counts []model.PitchingCounts) model.PitchingCounts {
	if len(counts) == 1 {
		return counts[0]
	}

	var out model.PitchingCounts
	outs := 0
	for _, c := range counts {
		outs += c.Innings.Outs()
		out.EarnedRuns += c.EarnedRuns
		out.Hits += c.Hits
		out.HomeRuns += c.HomeRuns
		out.BaseOnBalls += c.BaseOnBalls
		out.StrikeOuts += c.StrikeOuts
		out.BattersFaced += c.BattersFaced
	}
	out.Innings = model.InningsFromOuts(outs)
	return out
}

// sortedKeys fixes bucket iteration order.
func sortedKeys(m map[string]gjson.Result) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
