// Package baseline loads per-season league averages. A baseline is optional:
// callers that cannot get one classify against the displayed sample instead.
package baseline

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"github.com/c-tram/cycle-splits/internal/model"
	"github.com/c-tram/cycle-splits/internal/statnode"
)

// ErrNoData means the backend answered but had nothing for the season.
var ErrNoData = errors.New("no baseline data")

// Parse decodes a baseline payload:
//
//	{"batting": {"avg", "obp", "slg", "ops", "kRate", "bbRate"},
//	 "pitching": {"era", "whip", "fip", "totals": {"inningsPitched", "strikeOuts", "baseOnBalls"}}}
//
// Values may be numbers or numeric strings; missing ones stay nil.
func Parse(season int, body []byte) (*model.LeagueBaseline, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("parse baseline: invalid JSON")
	}
	root := gjson.ParseBytes(body)
	bat, pit := root.Get("batting"), root.Get("pitching")
	if !bat.IsObject() && !pit.IsObject() {
		return nil, fmt.Errorf("season %d: %w", season, ErrNoData)
	}

	b := &model.LeagueBaseline{Season: season}
	b.Batting = model.BattingBaseline{
		AVG:    statnode.OptFloat(bat.Get("avg")),
		OBP:    statnode.OptFloat(bat.Get("obp")),
		SLG:    statnode.OptFloat(bat.Get("slg")),
		OPS:    statnode.OptFloat(bat.Get("ops")),
		KRate:  statnode.OptFloat(bat.Get("kRate")),
		BBRate: statnode.OptFloat(bat.Get("bbRate")),
	}
	totals := pit.Get("totals")
	b.Pitching = model.PitchingBaseline{
		ERA:  statnode.OptFloat(pit.Get("era")),
		WHIP: statnode.OptFloat(pit.Get("whip")),
		FIP:  statnode.OptFloat(pit.Get("fip")),
		Totals: model.PitchingTotals{
			Innings:     statnode.Innings(totals.Get("inningsPitched")),
			StrikeOuts:  statnode.Int(totals.Get("strikeOuts")),
			BaseOnBalls: statnode.Int(totals.Get("baseOnBalls")),
		},
	}
	return b, nil
}

// Fetcher retrieves the raw baseline body for a season.
type Fetcher interface {
	Baseline(ctx context.Context, season int) ([]byte, error)
}

// Cache stores raw baseline bodies. ok is false on a miss.
type Cache interface {
	GetBaseline(ctx context.Context, season int) (body []byte, ok bool, err error)
	PutBaseline(ctx context.Context, season int, body []byte) error
}

// Provider serves baselines cache-first. Concurrent requests for the same
// season share one fetch.
type Provider struct {
	fetcher Fetcher
	cache   Cache
	group   singleflight.Group
	logger  zerolog.Logger
}

// NewProvider returns a Provider. cache may be nil.
func NewProvider(fetcher Fetcher, cache Cache, logger zerolog.Logger) *Provider {
	return &Provider{fetcher: fetcher, cache: cache, logger: logger}
}

// Get returns the baseline for season. Cache failures are logged and treated
// as misses; fetch and parse failures are returned.
func (p *Provider) Get(ctx context.Context, season int) (*model.LeagueBaseline, error) {
	v, err, shared := p.group.Do(strconv.Itoa(season), func() (any, error) {
		return p.load(ctx, season)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		p.logger.Debug().Int("season", season).Msg("baseline fetch shared")
	}
	return v.(*model.LeagueBaseline), nil
}

func (p *Provider) load(ctx context.Context, season int) (*model.LeagueBaseline, error) {
	if p.cache != nil {
		body, ok, err := p.cache.GetBaseline(ctx, season)
		switch {
		case err != nil:
			p.logger.Warn().Err(err).Int("season", season).Msg("baseline cache read failed")
		case ok:
			if b, err := Parse(season, body); err == nil {
				p.logger.Debug().Int("season", season).Msg("baseline cache hit")
				return b, nil
			}
			p.logger.Warn().Int("season", season).Msg("cached baseline unreadable, refetching")
		}
	}

	body, err := p.fetcher.Baseline(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("fetch baseline %d: %w", season, err)
	}
	b, err := Parse(season, body)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		if err := p.cache.PutBaseline(ctx, season, body); err != nil {
			p.logger.Warn().Err(err).Int("season", season).Msg("baseline cache write failed")
		}
	}
	p.logger.Debug().Int("season", season).Msg("baseline fetched")
	return b, nil
}
