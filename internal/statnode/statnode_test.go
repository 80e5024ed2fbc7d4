package statnode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/c-tram/cycle-splits/internal/model"
)

func TestLocatePrecedence(t *testing.T) {
	tests := []struct {
		name string
		json string
		hits int
	}{
		{"top level", `{"hits": 3}`, 3},
		{"kind key", `{"hits": 3, "batting": {"hits": 5}}`, 5},
		{"stats.kind wins", `{"hits": 3, "batting": {"hits": 5}, "stats": {"batting": {"hits": 7}}}`, 7},
		{"stats without kind falls through", `{"stats": {"pitching": {"hits": 9}}, "batting": {"hits": 4}}`, 4},
		{"kind not an object", `{"batting": 12, "hits": 2}`, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Batting(gjson.Parse(tt.json))
			assert.Equal(t, tt.hits, got.Hits)
		})
	}
}

func TestLocateNonObject(t *testing.T) {
	assert.False(t, Locate(gjson.Parse(`[1,2,3]`), model.Batting).Exists())
	assert.False(t, Locate(gjson.Parse(`null`), model.Pitching).Exists())
	assert.Equal(t, model.BattingCounts{}, Batting(gjson.Parse(`"nope"`)))
}

func TestSynonyms(t *testing.T) {
	c := Batting(gjson.Parse(`{"walks": 11, "strikeouts": 22}`))
	assert.Equal(t, 11, c.BaseOnBalls)
	assert.Equal(t, 22, c.StrikeOuts)

	// A present canonical field is never overwritten by its synonym.
	c = Batting(gjson.Parse(`{"baseOnBalls": 4, "walks": 11, "strikeOuts": 6, "strikeouts": 22}`))
	assert.Equal(t, 4, c.BaseOnBalls)
	assert.Equal(t, 6, c.StrikeOuts)

	// A null canonical field defers to the synonym.
	c = Batting(gjson.Parse(`{"baseOnBalls": null, "walks": 11}`))
	assert.Equal(t, 11, c.BaseOnBalls)
}

func TestNumericStringsAndMalformed(t *testing.T) {
	c := Batting(gjson.Parse(`{"atBats": "100", "hits": " 30 ", "doubles": "x", "triples": true, "avg": ".300", "obp": "-.--"}`))
	assert.Equal(t, 100, c.AtBats)
	assert.Equal(t, 30, c.Hits)
	assert.Equal(t, 0, c.Doubles)
	assert.Equal(t, 0, c.Triples)
	require.NotNil(t, c.AVG)
	assert.InDelta(t, 0.300, *c.AVG, 1e-12)
	assert.Nil(t, c.OBP)
	assert.Nil(t, c.PlateAppearances)
}

func TestOptionalCountsPresent(t *testing.T) {
	c := Batting(gjson.Parse(`{"plateAppearances": 0, "singles": 12, "totalBases": 40}`))
	require.NotNil(t, c.PlateAppearances)
	assert.Equal(t, 0, *c.PlateAppearances)
	require.NotNil(t, c.Singles)
	assert.Equal(t, 12, *c.Singles)
	require.NotNil(t, c.TotalBases)
	assert.Equal(t, 40, *c.TotalBases)
}

func TestPitchingInnings(t *testing.T) {
	tests := []struct {
		json string
		outs int
	}{
		{`{"inningsPitched": "6.2"}`, 20},
		{`{"inningsPitched": 6.2}`, 20},
		{`{"inningsPitched": 7}`, 21},
		{`{"pitching": {"inningsPitched": "1.1"}}`, 4},
		{`{"stats": {"pitching": {"inningsPitched": "0.2"}}}`, 2},
		{`{"inningsPitched": null}`, 0},
		{`{}`, 0},
	}
	for _, tt := range tests {
		got := Pitching(gjson.Parse(tt.json))
		assert.Equal(t, tt.outs, got.Innings.Outs(), tt.json)
	}
}

func TestPitchingFields(t *testing.T) {
	p := Pitching(gjson.Parse(`{"pitching": {"inningsPitched": "9.0", "earnedRuns": 3, "hits": 7,
		"homeRuns": 1, "walks": 2, "strikeouts": 10, "battersFaced": 36, "era": "3.00", "whip": null}}`))
	assert.Equal(t, 27, p.Innings.Outs())
	assert.Equal(t, 3, p.EarnedRuns)
	assert.Equal(t, 7, p.Hits)
	assert.Equal(t, 1, p.HomeRuns)
	assert.Equal(t, 2, p.BaseOnBalls)
	assert.Equal(t, 10, p.StrikeOuts)
	assert.Equal(t, 36, p.BattersFaced)
	require.NotNil(t, p.ERA)
	assert.InDelta(t, 3.0, *p.ERA, 1e-12)
	assert.Nil(t, p.WHIP)
	assert.Nil(t, p.FIP)
}
