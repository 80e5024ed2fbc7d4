// Package derive computes rate statistics from canonical counting stats.
// Every rate is guarded against a zero denominator and a rate the backend
// already computed always wins over the local value.
package derive

import (
	"github.com/tidwall/gjson"

	"github.com/c-tram/cycle-splits/internal/model"
	"github.com/c-tram/cycle-splits/internal/statnode"
)

// FIPConstant is the league constant added to the FIP core when the backend
// supplies no FIP of its own.
const FIPConstant = 3.10

// Batting derives batting rates from c.
func Batting(c model.BattingCounts) model.BattingStats {
	pa := c.ResolvedPA()
	singles := c.ResolvedSingles()
	tb := c.ResolvedTotalBases()

	ab := float64(c.AtBats)
	avg := prefer(c.AVG, func() float64 { return ratio(float64(c.Hits), ab) })
	obp := prefer(c.OBP, func() float64 {
		return ratio(float64(c.Hits+c.BaseOnBalls+c.HitByPitch), float64(pa))
	})
	slg := prefer(c.SLG, func() float64 { return ratio(float64(tb), ab) })
	ops := prefer(c.OPS, func() float64 { return obp + slg })

	return model.BattingStats{
		PA:          pa,
		AtBats:      c.AtBats,
		Hits:        c.Hits,
		Singles:     singles,
		Doubles:     c.Doubles,
		Triples:     c.Triples,
		HomeRuns:    c.HomeRuns,
		TotalBases:  tb,
		BaseOnBalls: c.BaseOnBalls,
		StrikeOuts:  c.StrikeOuts,
		HitByPitch:  c.HitByPitch,
		AVG:         avg,
		OBP:         obp,
		SLG:         slg,
		OPS:         ops,
		KRate:       ratio(float64(c.StrikeOuts), float64(pa)),
		BBRate:      ratio(float64(c.BaseOnBalls), float64(pa)),
	}
}

// Pitching derives pitching rates from c. Innings are handled as outs
// throughout, so "6.2" means 6⅔ innings here exactly as it does when buckets
// are summed.
func Pitching(c model.PitchingCounts) model.PitchingStats {
	ip := c.Innings.Float()

	era := prefer(c.ERA, func() float64 { return ratio(float64(c.EarnedRuns)*9, ip) })
	whip := prefer(c.WHIP, func() float64 { return ratio(float64(c.BaseOnBalls+c.Hits), ip) })
	fip := prefer(c.FIP, func() float64 {
		if ip <= 0 {
			return 0
		}
		core := float64(13*c.HomeRuns+3*c.BaseOnBalls-2*c.StrikeOuts) / ip
		return core + FIPConstant
	})

	return model.PitchingStats{
		Innings:      c.Innings,
		ERA:          era,
		WHIP:         whip,
		FIP:          fip,
		K9:           ratio(float64(c.StrikeOuts)*9, ip),
		BB9:          ratio(float64(c.BaseOnBalls)*9, ip),
		StrikeOuts:   c.StrikeOuts,
		BaseOnBalls:  c.BaseOnBalls,
		Hits:         c.Hits,
		HomeRuns:     c.HomeRuns,
		EarnedRuns:   c.EarnedRuns,
		BattersFaced: c.BattersFaced,
		KRate:        ratio(float64(c.StrikeOuts), float64(c.BattersFaced)),
		BBRate:       ratio(float64(c.BaseOnBalls), float64(c.BattersFaced)),
	}
}

// BattingNode normalizes a raw node and derives its batting line.
func BattingNode(node gjson.Result) model.BattingStats {
	return Batting(statnode.Batting(node))
}

// PitchingNode normalizes a raw node and derives its pitching line.
func PitchingNode(node gjson.Result) model.PitchingStats {
	return Pitching(statnode.Pitching(node))
}

// Row derives both categories for one bucket.
func Row(key, label string, node gjson.Result) model.SplitRow {
	return model.SplitRow{
		Key:      key,
		Label:    label,
		Batting:  BattingNode(node),
		Pitching: PitchingNode(node),
	}
}

// prefer returns the backend value when present, otherwise the computed fallback.
func prefer(backend *float64, fallback func() float64) float64 {
	if backend != nil {
		return *backend
	}
	return fallback()
}

// ratio is num/den, or 0 when den is not positive.
func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
