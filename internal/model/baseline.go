package model

// LeagueBaseline holds one season's league-average rates. A nil field means
// the backend did not report that stat.
type LeagueBaseline struct {
	Season   int              `json:"season"`
	Batting  BattingBaseline  `json:"batting"`
	Pitching PitchingBaseline `json:"pitching"`
}

type BattingBaseline struct {
	AVG    *float64 `json:"avg"`
	OBP    *float64 `json:"obp"`
	SLG    *float64 `json:"slg"`
	OPS    *float64 `json:"ops"`
	KRate  *float64 `json:"kRate"`
	BBRate *float64 `json:"bbRate"`
}

type PitchingBaseline struct {
	ERA    *float64       `json:"era"`
	WHIP   *float64       `json:"whip"`
	FIP    *float64       `json:"fip"`
	Totals PitchingTotals `json:"totals"`
}

// PitchingTotals are league-wide counting totals; K/9 and BB/9 baselines are
// derived from them.
type PitchingTotals struct {
	Innings     Innings `json:"inningsPitched"`
	StrikeOuts  int     `json:"strikeOuts"`
	BaseOnBalls int     `json:"baseOnBalls"`
}

// Lookup returns the baseline value for statKey in the given context. A nil
// receiver has no values, so callers can pass an absent baseline through.
func (b *LeagueBaseline) Lookup(kind Kind, statKey string) (float64, bool) {
	if b == nil {
		return 0, false
	}
	if kind == Pitching {
		return b.Pitching.lookup(statKey)
	}
	return b.Batting.lookup(statKey)
}

func (b BattingBaseline) lookup(key string) (float64, bool) {
	switch key {
	case "avg":
		return deref(b.AVG)
	case "obp":
		return deref(b.OBP)
	case "slg":
		return deref(b.SLG)
	case "ops":
		return deref(b.OPS)
	case "kRate":
		return deref(b.KRate)
	case "bbRate":
		return deref(b.BBRate)
	}
	return 0, false
}

func (b PitchingBaseline) lookup(key string) (float64, bool) {
	switch key {
	case "era":
		return deref(b.ERA)
	case "whip":
		return deref(b.WHIP)
	case "fip":
		return deref(b.FIP)
	case "k9":
		if b.Totals.Innings <= 0 {
			return 0, false
		}
		return float64(b.Totals.StrikeOuts) * 9 / b.Totals.Innings.Float(), true
	case "bb9":
		if b.Totals.Innings <= 0 {
			return 0, false
		}
		return float64(b.Totals.BaseOnBalls) * 9 / b.Totals.Innings.Float(), true
	}
	return 0, false
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
