package splits

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c-tram/cycle-splits/internal/model"
	"github.com/c-tram/cycle-splits/internal/rows"
	"github.com/c-tram/cycle-splits/internal/tier"
)

func loadFixture(t *testing.T) Payload {
	t.Helper()
	body, err := os.ReadFile("testdata/macro.json")
	require.NoError(t, err)
	p, err := Parse(body)
	require.NoError(t, err)
	return p
}

func labels(rs []model.SplitRow) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Label
	}
	return out
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"by_location": `))
	assert.Error(t, err)
	_, err = Parse([]byte(`[1,2]`))
	assert.Error(t, err)

	p, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, p.Available())
}

func TestParseView(t *testing.T) {
	v, err := ParseView("Count-VS-Team")
	require.NoError(t, err)
	assert.Equal(t, CountVsTeam, v)
	assert.True(t, v.Compound())

	_, err = ParseView("weather")
	assert.True(t, errors.Is(err, ErrUnknownView))
}

func TestAvailable(t *testing.T) {
	p := loadFixture(t)
	assert.Equal(t, Views(), p.Available())
}

func TestLocationView(t *testing.T) {
	p := loadFixture(t)
	groups, err := p.Groups(Location)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "", groups[0].Label)

	rs := groups[0].Rows
	assert.Equal(t, []string{"Home", "Away"}, labels(rs))
	// Backend avg wins on the home bucket.
	assert.InDelta(t, 0.360, rs[0].Batting.AVG, 1e-12)
	// Synonyms resolve on the away bucket.
	assert.InDelta(t, 0.240, rs[1].Batting.AVG, 1e-12)
	assert.Equal(t, 5, rs[1].Batting.BaseOnBalls)
	assert.Equal(t, 11, rs[1].Batting.StrikeOuts)
}

func TestHandednessOrder(t *testing.T) {
	p := loadFixture(t)
	groups, err := p.Groups(Handedness)
	require.NoError(t, err)
	assert.Equal(t, []string{"vs Left", "vs Right"}, labels(groups[0].Rows))
	assert.Equal(t, "L", groups[0].Rows[0].Key)
}

func TestTeamsAggregateHomeAndAway(t *testing.T) {
	p := loadFixture(t)
	groups, err := p.Groups(Teams)
	require.NoError(t, err)
	rs := groups[0].Rows
	require.Equal(t, []string{"vs NYY", "vs BOS", "vs TB.X"}, labels(rs))

	assert.Equal(t, 20, rs[0].Batting.AtBats)
	assert.InDelta(t, 0.250, rs[0].Batting.AVG, 1e-12)
	assert.Equal(t, 8, rs[1].Batting.AtBats)
	assert.Equal(t, 4, rs[2].Batting.AtBats)
}

func TestPitchersLabelFromName(t *testing.T) {
	p := loadFixture(t)
	groups, err := p.Groups(Pitchers)
	require.NoError(t, err)
	rs := groups[0].Rows
	assert.Equal(t, []string{"Gerrit Cole", "605483"}, labels(rs))
	assert.Equal(t, 6, rs[0].Batting.AtBats)
}

func TestCompoundViews(t *testing.T) {
	p := loadFixture(t)

	groups, err := p.Groups(CountVsTeam)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Count 0-0", groups[0].Label)
	assert.Equal(t, []string{"vs NYY", "vs BOS"}, labels(groups[0].Rows))
	assert.Equal(t, "Count 3-2", groups[1].Label)

	groups, err = p.Groups(CountVsHandedness)
	require.NoError(t, err)
	assert.Equal(t, []string{"vs Left", "vs Right"}, labels(groups[0].Rows))

	groups, err = p.Groups(HandednessVsTeam)
	require.NoError(t, err)
	assert.Equal(t, "vs Left", groups[0].Label)
	assert.Equal(t, "vs Right", groups[1].Label)
	assert.Len(t, groups[1].Rows, 2)
}

func TestGroupsUnknownView(t *testing.T) {
	p := loadFixture(t)
	_, err := p.Groups(View("weather"))
	assert.True(t, errors.Is(err, ErrUnknownView))
}

func TestCombineOpponents(t *testing.T) {
	p := loadFixture(t)
	row, err := p.Combine(Teams, []string{"NYY", "BOS", "SEA"}, "")
	require.NoError(t, err)
	assert.Equal(t, "NYY+BOS", row.Key)
	assert.Equal(t, "NYY + BOS", row.Label)
	assert.Equal(t, 28, row.Batting.AtBats)
	assert.InDelta(t, 7.0/28, row.Batting.AVG, 1e-12)
}

func TestCombineLocationDropsBackendRates(t *testing.T) {
	p := loadFixture(t)
	row, err := p.Combine(Location, []string{"home", "away"}, "Total")
	require.NoError(t, err)
	assert.Equal(t, "Total", row.Label)
	assert.InDelta(t, 0.300, row.Batting.AVG, 1e-12)
	// "1.2" + "1.2" is ten outs.
	assert.Equal(t, "3.1", row.Pitching.Innings.String())
	assert.Equal(t, 5, row.Pitching.StrikeOuts)
}

func TestCombineErrors(t *testing.T) {
	p := loadFixture(t)
	_, err := p.Combine(Teams, []string{"SEA"}, "")
	assert.Error(t, err)
	_, err = p.Combine(CountVsTeam, []string{"0-0"}, "")
	assert.Error(t, err)
	_, err = p.Combine(View("x"), nil, "")
	assert.True(t, errors.Is(err, ErrUnknownView))
}

func ptr(v float64) *float64 { return &v }

func TestExploreSortFilterAndTiers(t *testing.T) {
	p := loadFixture(t)
	groups, err := p.Groups(Location)
	require.NoError(t, err)

	base := &model.LeagueBaseline{Batting: model.BattingBaseline{AVG: ptr(0.250)}}
	tbl := Explore(groups, Query{Kind: model.Batting, SortKey: "AVG", Dir: rows.Desc, Baseline: base})
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "Home", tbl.Groups[0].Rows[0].Label)

	avgCol := -1
	for i, c := range tbl.Columns {
		if c.Key == "avg" {
			avgCol = i
		}
	}
	require.GreaterOrEqual(t, avgCol, 0)
	home := tbl.Groups[0].Rows[0].Cells[avgCol]
	away := tbl.Groups[0].Rows[1].Cells[avgCol]
	assert.Equal(t, ".360", home.Text)
	assert.Equal(t, tier.Elite, home.Tier)
	assert.Equal(t, tier.BelowAverage, away.Tier) // .240 is 4% under
}

func TestExploreFilter(t *testing.T) {
	p := loadFixture(t)
	groups, _ := p.Groups(Location)
	tbl := Explore(groups, Query{Kind: model.Batting, Filter: "AW"})
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "Away", tbl.Groups[0].Rows[0].Label)
	assert.Len(t, tbl.SplitGroups()[0].Rows, 1)
}

func TestExplorePercentileFallback(t *testing.T) {
	p := loadFixture(t)
	groups, _ := p.Groups(Counts)
	tbl := Explore(groups, Query{Kind: model.Batting, SortKey: "split"})

	var avgCol int
	for i, c := range tbl.Columns {
		if c.Key == "avg" {
			avgCol = i
		}
	}
	rs := tbl.Groups[0].Rows
	require.Equal(t, "0-0", rs[0].Label)
	assert.Equal(t, tier.Elite, rs[0].Cells[avgCol].Tier) // .350, top of the sample
	assert.Equal(t, tier.Poor, rs[1].Cells[avgCol].Tier)  // .200, bottom
}

func TestExploreUntieredColumnsStayAverage(t *testing.T) {
	p := loadFixture(t)
	groups, _ := p.Groups(Counts)
	tbl := Explore(groups, Query{Kind: model.Pitching})
	for _, r := range tbl.Groups[0].Rows {
		for i, c := range tbl.Columns {
			if !c.Tiered {
				assert.Equal(t, tier.Average, r.Cells[i].Tier)
			}
		}
	}
}
