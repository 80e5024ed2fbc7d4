package model

import (
	"fmt"
	"strconv"
)

// Kind selects the stat category of a node and the context a metric is judged in.
type Kind int

const (
	Batting  Kind = 0
	Pitching Kind = 1
)

func (k Kind) String() string {
	switch k {
	case Pitching:
		return "pitching"
	default:
		return "batting"
	}
}

// ParseKind accepts "batting"/"b"/"hitting" and "pitching"/"p".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "batting", "b", "hitting":
		return Batting, nil
	case "pitching", "p":
		return Pitching, nil
	}
	return Batting, fmt.Errorf("unknown stat kind %q (want batting or pitching)", s)
}

// ---- Canonical raw counting stats (output of the normalizer) ----

// BattingCounts is one batting node after path and synonym resolution.
// PlateAppearances, Singles and TotalBases stay nil when the backend did not
// supply them so the fallback formulas can run.
type BattingCounts struct {
	AtBats, Hits, Doubles, Triples, HomeRuns int
	BaseOnBalls, StrikeOuts                  int
	HitByPitch, SacrificeFlies               int

	PlateAppearances *int
	Singles          *int
	TotalBases       *int

	// Backend-computed rates. When present they win over local computation.
	AVG, OBP, SLG, OPS *float64
}

// ResolvedPA returns plateAppearances, else AB+BB+HBP+SF.
func (c BattingCounts) ResolvedPA() int {
	if c.PlateAppearances != nil {
		return *c.PlateAppearances
	}
	return c.AtBats + c.BaseOnBalls + c.HitByPitch + c.SacrificeFlies
}

// ResolvedSingles returns singles, else H-2B-3B-HR. The result is not clamped
// and goes negative when upstream extra-base hits exceed hits.
func (c BattingCounts) ResolvedSingles() int {
	if c.Singles != nil {
		return *c.Singles
	}
	return c.Hits - c.Doubles - c.Triples - c.HomeRuns
}

// ResolvedTotalBases returns totalBases, else 1B+2*2B+3*3B+4*HR.
func (c BattingCounts) ResolvedTotalBases() int {
	if c.TotalBases != nil {
		return *c.TotalBases
	}
	return c.ResolvedSingles() + 2*c.Doubles + 3*c.Triples + 4*c.HomeRuns
}

// PitchingCounts is one pitching node after path and synonym resolution.
type PitchingCounts struct {
	Innings      Innings
	EarnedRuns   int
	Hits         int
	HomeRuns     int
	BaseOnBalls  int
	StrikeOuts   int
	BattersFaced int

	ERA, WHIP, FIP *float64
}

// ---- Derived stats ----

type BattingStats struct {
	PA, AtBats, Hits                    int
	Singles, Doubles, Triples, HomeRuns int
	TotalBases                          int
	BaseOnBalls, StrikeOuts, HitByPitch int

	AVG, OBP, SLG, OPS float64
	KRate, BBRate      float64
}

type PitchingStats struct {
	Innings Innings

	ERA, WHIP, FIP float64
	K9, BB9        float64

	StrikeOuts, BaseOnBalls, Hits, HomeRuns int
	EarnedRuns, BattersFaced                int

	KRate, BBRate float64
}

// Value returns the named batting stat. Keys use the backend's camelCase names.
func (s BattingStats) Value(key string) (float64, bool) {
	switch key {
	case "pa", "plateAppearances":
		return float64(s.PA), true
	case "atBats":
		return float64(s.AtBats), true
	case "hits":
		return float64(s.Hits), true
	case "singles":
		return float64(s.Singles), true
	case "doubles":
		return float64(s.Doubles), true
	case "triples":
		return float64(s.Triples), true
	case "homeRuns":
		return float64(s.HomeRuns), true
	case "totalBases":
		return float64(s.TotalBases), true
	case "baseOnBalls":
		return float64(s.BaseOnBalls), true
	case "strikeOuts":
		return float64(s.StrikeOuts), true
	case "hitByPitch":
		return float64(s.HitByPitch), true
	case "avg":
		return s.AVG, true
	case "obp":
		return s.OBP, true
	case "slg":
		return s.SLG, true
	case "ops":
		return s.OPS, true
	case "kRate":
		return s.KRate, true
	case "bbRate":
		return s.BBRate, true
	}
	return 0, false
}

// Value returns the named pitching stat; "innings" is the float innings count.
func (s PitchingStats) Value(key string) (float64, bool) {
	switch key {
	case "innings", "inningsPitched":
		return s.Innings.Float(), true
	case "era":
		return s.ERA, true
	case "whip":
		return s.WHIP, true
	case "fip":
		return s.FIP, true
	case "k9":
		return s.K9, true
	case "bb9":
		return s.BB9, true
	case "strikeOuts":
		return float64(s.StrikeOuts), true
	case "baseOnBalls":
		return float64(s.BaseOnBalls), true
	case "hits":
		return float64(s.Hits), true
	case "homeRuns":
		return float64(s.HomeRuns), true
	case "earnedRuns":
		return float64(s.EarnedRuns), true
	case "battersFaced":
		return float64(s.BattersFaced), true
	case "kRate":
		return s.KRate, true
	case "bbRate":
		return s.BBRate, true
	}
	return 0, false
}

// ---- Split rows ----

// SplitRow is one situational bucket ("home", "L", "NYY", "3-2") with both
// stat categories derived.
type SplitRow struct {
	Key      string        `json:"key"`
	Label    string        `json:"label"`
	Batting  BattingStats  `json:"batting"`
	Pitching PitchingStats `json:"pitching"`
}

// Value reads statKey from the category selected by kind.
func (r SplitRow) Value(kind Kind, statKey string) (float64, bool) {
	if kind == Pitching {
		return r.Pitching.Value(statKey)
	}
	return r.Batting.Value(statKey)
}

// SplitGroup is a run of rows under one heading. Flat views use a single group
// with an empty label; compound views emit one group per outer key.
type SplitGroup struct {
	Label string     `json:"label,omitempty"`
	Rows  []SplitRow `json:"rows"`
}

// ---- Selection / search ----

// Selection identifies one macro-split payload on the backend.
type Selection struct {
	Team     string `json:"team"`
	PlayerID string `json:"player_id,omitempty"`
	Season   int    `json:"season"`
}

// Key is a stable identity used for cache keys and de-duplication.
func (s Selection) Key() string {
	return s.Team + "|" + s.PlayerID + "|" + strconv.Itoa(s.Season)
}

func (s Selection) String() string {
	if s.PlayerID == "" {
		return fmt.Sprintf("%s %d", s.Team, s.Season)
	}
	return fmt.Sprintf("%s/%s %d", s.Team, s.PlayerID, s.Season)
}

// Candidate is one player/team search hit.
type Candidate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Team     string `json:"team,omitempty"`
	Position string `json:"position,omitempty"`
}
