// Package session holds the state of one explorer session: the selected
// season, its league baseline, the loaded macro-split payload and the recent
// selections. Fetches are tagged with a sequence number so a slow response
// can never overwrite a newer one.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/c-tram/cycle-splits/internal/model"
	"github.com/c-tram/cycle-splits/internal/splits"
)

var (
	// ErrSuperseded is returned by a fetch whose result was dropped because
	// a newer fetch of the same kind started after it.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrNotLoaded means no payload has been loaded yet.
	ErrNotLoaded = errors.New("no splits loaded")
)

// State is the lifecycle of one fetch slot.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// Fetcher is the backend the session reads from.
type Fetcher interface {
	SearchPlayers(ctx context.Context, query string) ([]model.Candidate, error)
	MacroSplits(ctx context.Context, sel model.Selection) ([]byte, error)
}

// Cache stores raw macro-split bodies between runs.
type Cache interface {
	GetPayload(ctx context.Context, sel model.Selection) (body []byte, ok bool, err error)
	PutPayload(ctx context.Context, sel model.Selection, body []byte) error
}

// BaselineSource returns a season's league baseline.
type BaselineSource interface {
	Get(ctx context.Context, season int) (*model.LeagueBaseline, error)
}

// maxRecent bounds the recent-selection list.
const maxRecent = 10

// slot tracks one kind of fetch.
type slot struct {
	seq   uint64
	state State
	err   error
}

func (s *slot) begin() uint64 {
	s.seq++
	s.state = Loading
	s.err = nil
	return s.seq
}

// Status is a snapshot of the session for display.
type Status struct {
	Season        int
	Selection     *model.Selection
	SplitsState   State
	SplitsErr     error
	BaselineState State
	BaselineErr   error
	HasBaseline   bool
}

// Session is safe for concurrent use.
type Session struct {
	fetcher   Fetcher
	cache     Cache
	baselines BaselineSource
	logger    zerolog.Logger

	mu       sync.Mutex
	season   int
	baseline *model.LeagueBaseline
	payload  *splits.Payload
	current  *model.Selection
	recent   []model.Selection
	split    slot
	base     slot
	search   slot
}

// New returns a session for season. cache may be nil.
func New(fetcher Fetcher, cache Cache, baselines BaselineSource, season int, logger zerolog.Logger) *Session {
	return &Session{
		fetcher:   fetcher,
		cache:     cache,
		baselines: baselines,
		season:    season,
		logger:    logger,
	}
}

// Season returns the current season.
func (s *Session) Season() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.season
}

// SetSeason switches seasons. The baseline is discarded wholesale and any
// in-flight baseline fetch for the old season is superseded.
func (s *Session) SetSeason(season int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if season == s.season {
		return
	}
	s.season = season
	s.baseline = nil
	s.base.seq++
	s.base.state = Idle
	s.base.err = nil
}

// Baseline returns the current baseline, or nil.
func (s *Session) Baseline() *model.LeagueBaseline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline
}

// Status returns a snapshot of every slot.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Season:        s.season,
		SplitsState:   s.split.state,
		SplitsErr:     s.split.err,
		BaselineState: s.base.state,
		BaselineErr:   s.base.err,
		HasBaseline:   s.baseline != nil,
	}
	if s.current != nil {
		sel := *s.current
		st.Selection = &sel
	}
	return st
}

// Recent returns recent selections, most recent first.
func (s *Session) Recent() []model.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Selection, len(s.recent))
	copy(out, s.recent)
	return out
}

// Load fetches the selection's splits and the season baseline concurrently.
// Only a splits failure is returned; a baseline failure leaves the baseline
// slot in the Failed state and classification falls back to percentiles.
func (s *Session) Load(ctx context.Context, sel model.Selection) error {
	if sel.Season == 0 {
		sel.Season = s.Season()
	}
	s.SetSeason(sel.Season)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.LoadSplits(gctx, sel)
	})
	g.Go(func() error {
		if err := s.LoadBaseline(ctx, sel.Season); err != nil && !errors.Is(err, ErrSuperseded) {
			s.logger.Warn().Err(err).Int("season", sel.Season).Msg("baseline unavailable, using percentile tiers")
		}
		return nil
	})
	return g.Wait()
}

// LoadSplits fetches the payload for sel, cache first. A result that arrives
// after a newer LoadSplits started is discarded with ErrSuperseded.
func (s *Session) LoadSplits(ctx context.Context, sel model.Selection) error {
	s.mu.Lock()
	seq := s.split.begin()
	s.mu.Unlock()

	p, err := s.fetchSplits(ctx, sel)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.split.seq {
		s.logger.Debug().Str("selection", sel.String()).Msg("stale splits response dropped")
		return ErrSuperseded
	}
	if err != nil {
		s.split.state = Failed
		s.split.err = err
		s.payload = nil
		s.current = &sel
		return err
	}
	s.payload = &p
	s.current = &sel
	s.split.state = Loaded
	s.pushRecent(sel)
	return nil
}

// fetchSplits reads sel from the cache, else fetches it and writes the raw
// body back. Cache failures are logged and treated as misses.
func (s *Session) fetchSplits(ctx context.Context, sel model.Selection) (splits.Payload, error) {
	if s.cache != nil {
		body, ok, err := s.cache.GetPayload(ctx, sel)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("selection", sel.String()).Msg("payload cache read failed")
		case ok:
			if p, err := splits.Parse(body); err == nil {
				s.logger.Debug().Str("selection", sel.String()).Msg("payload cache hit")
				return p, nil
			}
		}
	}
	body, err := s.fetcher.MacroSplits(ctx, sel)
	if err != nil {
		return splits.Payload{}, fmt.Errorf("fetch splits %s: %w", sel, err)
	}
	p, err := splits.Parse(body)
	if err != nil {
		return splits.Payload{}, fmt.Errorf("load splits %s: %w", sel, err)
	}
	if s.cache != nil {
		if err := s.cache.PutPayload(ctx, sel, body); err != nil {
			s.logger.Warn().Err(err).Str("selection", sel.String()).Msg("payload cache write failed")
		}
	}
	return p, nil
}

// LoadBaseline fetches the baseline for season. If the session has moved to
// another season, or a newer baseline fetch started, the result is dropped.
func (s *Session) LoadBaseline(ctx context.Context, season int) error {
	s.mu.Lock()
	seq := s.base.begin()
	s.mu.Unlock()

	b, err := s.baselines.Get(ctx, season)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.base.seq || season != s.season {
		return ErrSuperseded
	}
	if err != nil {
		s.base.state = Failed
		s.base.err = err
		s.baseline = nil
		return err
	}
	s.baseline = b
	s.base.state = Loaded
	return nil
}

// Search looks up players. Only the most recent search may return results.
func (s *Session) Search(ctx context.Context, query string) ([]model.Candidate, error) {
	s.mu.Lock()
	seq := s.search.begin()
	s.mu.Unlock()

	hits, err := s.fetcher.SearchPlayers(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.search.seq {
		return nil, ErrSuperseded
	}
	if err != nil {
		s.search.state = Failed
		s.search.err = err
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	s.search.state = Loaded
	return hits, nil
}

// Payload returns the loaded payload. After a failed load it returns that
// failure, never the payload of an earlier selection.
func (s *Session) Payload() (splits.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.split.state == Failed {
		return splits.Payload{}, s.split.err
	}
	if s.payload == nil {
		return splits.Payload{}, ErrNotLoaded
	}
	return *s.payload, nil
}

// View derives, filters, sorts and classifies view v of the loaded payload.
// It recomputes from the raw payload on every call. q.Baseline is filled from
// the session when the caller leaves it nil.
func (s *Session) View(v splits.View, q splits.Query) (splits.Table, error) {
	p, err := s.Payload()
	if err != nil {
		return splits.Table{}, err
	}
	groups, err := p.Groups(v)
	if err != nil {
		return splits.Table{}, err
	}
	if q.Baseline == nil {
		q.Baseline = s.Baseline()
	}
	return splits.Explore(groups, q), nil
}

// pushRecent moves sel to the front of the recent list. Caller holds mu.
func (s *Session) pushRecent(sel model.Selection) {
	out := make([]model.Selection, 0, maxRecent)
	out = append(out, sel)
	for _, r := range s.recent {
		if r.Key() == sel.Key() {
			continue
		}
		if len(out) == maxRecent {
			break
		}
		out = append(out, r)
	}
	s.recent = out
}
