// Package tier grades a single derived metric on a five-step scale, either
// against a league baseline or, without one, against the other values
// currently on screen.
package tier

import (
	"math"
	"sort"

	"github.com/c-tram/cycle-splits/internal/model"
)

// Tier is an ordinal quality bucket, Poor (0) through Elite (4).
type Tier int

const (
	Poor         Tier = 0
	BelowAverage Tier = 1
	Average      Tier = 2
	AboveAverage Tier = 3
	Elite        Tier = 4
)

func (t Tier) String() string {
	switch t {
	case Poor:
		return "Poor"
	case BelowAverage:
		return "Below Average"
	case Average:
		return "Average"
	case AboveAverage:
		return "Above Average"
	case Elite:
		return "Elite"
	default:
		return "?"
	}
}

// Reference supplies a comparison value for a stat. *model.LeagueBaseline
// satisfies it, including as a nil pointer.
type Reference interface {
	Lookup(kind model.Kind, statKey string) (float64, bool)
}

// Deviation bands, in percent from the baseline (already sign-corrected so
// positive is always better).
const (
	eliteDeviation = 10.0
	aboveDeviation = 3.0
)

// Percentile cut points for the sample fallback.
const (
	elitePct = 0.90
	abovePct = 0.65
	avgPct   = 0.35
	belowPct = 0.10
)

// LowerIsBetter reports whether smaller values of statKey are better in kind's
// context: strikeout rate for hitters, ERA/WHIP/FIP for pitchers.
func LowerIsBetter(kind model.Kind, statKey string) bool {
	if kind == model.Pitching {
		switch statKey {
		case "era", "whip", "fip":
			return true
		}
		return false
	}
	return statKey == "kRate"
}

// Classify grades value for statKey. A NaN value is Average. When ref has a
// non-zero value for the stat the grade comes from the percentage deviation;
// otherwise it comes from value's percentile within sample. Never panics.
func Classify(statKey string, value float64, ref Reference, sample []float64, kind model.Kind) Tier {
	if math.IsNaN(value) {
		return Average
	}
	lower := LowerIsBetter(kind, statKey)

	if base, ok := lookup(ref, kind, statKey); ok && base != 0 && !math.IsNaN(base) && !math.IsInf(base, 0) {
		dev := roundDeviation((value - base) / math.Abs(base) * 100)
		if lower {
			dev = -dev
		}
		return fromDeviation(dev)
	}

	pct, ok := Percentile(value, sample)
	if !ok {
		return Average
	}
	t := fromPercentile(pct)
	if lower {
		t = Elite - t
	}
	return t
}

// ClassifyOptional is Classify for a value that may be missing.
func ClassifyOptional(statKey string, value *float64, ref Reference, sample []float64, kind model.Kind) Tier {
	if value == nil {
		return Average
	}
	return Classify(statKey, *value, ref, sample, kind)
}

// Percentile ranks value within sample: the rank is the first index of the
// ascending-sorted sample whose value is >= value (the last index when none
// is), scaled to 0..1. NaN entries are ignored. A single-value sample ranks at
// the median. ok is false for an empty sample.
func Percentile(value float64, sample []float64) (float64, bool) {
	sorted := make([]float64, 0, len(sample))
	for _, v := range sample {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	n := len(sorted)
	if n == 0 {
		return 0, false
	}
	if n == 1 {
		return 0.5, true
	}
	sort.Float64s(sorted)
	rank := sort.SearchFloat64s(sorted, value)
	if rank >= n {
		rank = n - 1
	}
	return float64(rank) / float64(n-1), true
}

// roundDeviation drops float noise below 1e-9 percent so a value exactly on a
// band edge (.309 against .300) lands on the edge, not past it.
func roundDeviation(dev float64) float64 {
	return math.Round(dev*1e9) / 1e9
}

func fromDeviation(dev float64) Tier {
	switch {
	case math.IsNaN(dev):
		return Average
	case dev > eliteDeviation:
		return Elite
	case dev > aboveDeviation:
		return AboveAverage
	case dev >= -aboveDeviation:
		return Average
	case dev >= -eliteDeviation:
		return BelowAverage
	default:
		return Poor
	}
}

func fromPercentile(p float64) Tier {
	switch {
	case p >= elitePct:
		return Elite
	case p >= abovePct:
		return AboveAverage
	case p >= avgPct:
		return Average
	case p >= belowPct:
		return BelowAverage
	default:
		return Poor
	}
}

// lookup tolerates a nil interface as well as a nil *LeagueBaseline inside one.
func lookup(ref Reference, kind model.Kind, statKey string) (float64, bool) {
	if ref == nil {
		return 0, false
	}
	return ref.Lookup(kind, statKey)
}
