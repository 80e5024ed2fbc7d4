package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c-tram/cycle-splits/internal/model"
	"github.com/c-tram/cycle-splits/internal/splits"
)

const payload = `{"by_location": {
  "home": {"batting": {"atBats": 40, "hits": 12}},
  "away": {"batting": {"atBats": 40, "hits": 8}}
}}`

// fakeBackend answers from fixed bodies. A gate registered for a team
// blocks that team's fetch until the channel is closed.
type fakeBackend struct {
	mu       sync.Mutex
	gates    map[string]chan struct{}
	splitErr error
	calls    int
	hits     map[string][]model.Candidate
}

func (f *fakeBackend) gate(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gates == nil {
		f.gates = map[string]chan struct{}{}
	}
	ch := make(chan struct{})
	f.gates[key] = ch
	return ch
}

func (f *fakeBackend) wait(key string) {
	f.mu.Lock()
	ch := f.gates[key]
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (f *fakeBackend) SearchPlayers(_ context.Context, q string) ([]model.Candidate, error) {
	f.wait("search:" + q)
	return f.hits[q], nil
}

func (f *fakeBackend) MacroSplits(_ context.Context, sel model.Selection) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	f.wait(sel.Team)
	if f.splitErr != nil {
		return nil, f.splitErr
	}
	return []byte(payload), nil
}

type fakeBaselines struct {
	mu    sync.Mutex
	err   error
	gates map[int]chan struct{}
}

func (f *fakeBaselines) Get(_ context.Context, season int) (*model.LeagueBaseline, error) {
	f.mu.Lock()
	ch := f.gates[season]
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
	if f.err != nil {
		return nil, f.err
	}
	avg := 0.250
	return &model.LeagueBaseline{Season: season, Batting: model.BattingBaseline{AVG: &avg}}, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) GetPayload(_ context.Context, sel model.Selection) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[sel.Key()]
	return b, ok, nil
}

func (m *memCache) PutPayload(_ context.Context, sel model.Selection, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[sel.Key()] = body
	return nil
}

func newSession(b *fakeBackend, bl *fakeBaselines, c Cache) *Session {
	return New(b, c, bl, 2024, zerolog.Nop())
}

// eventually polls cond until it holds or a second passes.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoadAndView(t *testing.T) {
	s := newSession(&fakeBackend{}, &fakeBaselines{}, nil)
	require.NoError(t, s.Load(context.Background(), model.Selection{Team: "NYY", Season: 2024}))

	st := s.Status()
	assert.Equal(t, Loaded, st.SplitsState)
	assert.Equal(t, Loaded, st.BaselineState)
	assert.True(t, st.HasBaseline)

	tbl, err := s.View(splits.Location, splits.Query{Kind: model.Batting})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestViewBeforeLoad(t *testing.T) {
	s := newSession(&fakeBackend{}, &fakeBaselines{}, nil)
	_, err := s.View(splits.Location, splits.Query{})
	assert.True(t, errors.Is(err, ErrNotLoaded))
	assert.Equal(t, Idle, s.Status().SplitsState)
}

func TestSplitsFailureIsDistinctFromNotLoaded(t *testing.T) {
	boom := errors.New("HTTP 503")
	s := newSession(&fakeBackend{splitErr: boom}, &fakeBaselines{}, nil)

	err := s.Load(context.Background(), model.Selection{Team: "NYY"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))

	st := s.Status()
	assert.Equal(t, Failed, st.SplitsState)
	_, err = s.Payload()
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, ErrNotLoaded))
}

func TestFailedReloadDropsPreviousPayload(t *testing.T) {
	b := &fakeBackend{}
	s := newSession(b, &fakeBaselines{}, nil)
	require.NoError(t, s.Load(context.Background(), model.Selection{Team: "NYY", Season: 2024}))

	boom := errors.New("HTTP 502")
	b.splitErr = boom
	err := s.Load(context.Background(), model.Selection{Team: "BOS", Season: 2023})
	require.True(t, errors.Is(err, boom))

	st := s.Status()
	assert.Equal(t, 2023, st.Season)
	assert.Equal(t, Failed, st.SplitsState)
	require.NotNil(t, st.Selection)
	assert.Equal(t, "BOS", st.Selection.Team)

	_, err = s.View(splits.Location, splits.Query{Kind: model.Batting})
	assert.True(t, errors.Is(err, boom))

	b.splitErr = nil
	require.NoError(t, s.Load(context.Background(), model.Selection{Team: "BOS", Season: 2023}))
	tbl, err := s.View(splits.Location, splits.Query{Kind: model.Batting})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestBaselineFailureDoesNotBlockSplits(t *testing.T) {
	s := newSession(&fakeBackend{}, &fakeBaselines{err: errors.New("down")}, nil)
	require.NoError(t, s.Load(context.Background(), model.Selection{Team: "NYY"}))

	st := s.Status()
	assert.Equal(t, Loaded, st.SplitsState)
	assert.Equal(t, Failed, st.BaselineState)
	assert.Nil(t, s.Baseline())

	tbl, err := s.View(splits.Location, splits.Query{Kind: model.Batting})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestStaleSplitsResponseIsDropped(t *testing.T) {
	b := &fakeBackend{}
	release := b.gate("BOS")
	s := newSession(b, &fakeBaselines{}, nil)

	errc := make(chan error, 1)
	go func() { errc <- s.LoadSplits(context.Background(), model.Selection{Team: "BOS", Season: 2024}) }()
	eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.calls == 1
	})

	require.NoError(t, s.LoadSplits(context.Background(), model.Selection{Team: "NYY", Season: 2024}))
	close(release)

	assert.True(t, errors.Is(<-errc, ErrSuperseded))
	assert.Equal(t, "NYY", s.Status().Selection.Team)
	assert.Len(t, s.Recent(), 1)
}

func TestSeasonChangeReplacesBaseline(t *testing.T) {
	s := newSession(&fakeBackend{}, &fakeBaselines{}, nil)
	require.NoError(t, s.LoadBaseline(context.Background(), 2024))
	require.NotNil(t, s.Baseline())

	s.SetSeason(2023)
	assert.Nil(t, s.Baseline())
	assert.Equal(t, Idle, s.Status().BaselineState)
	assert.Equal(t, 2023, s.Season())
}

func TestBaselineForOldSeasonIsDropped(t *testing.T) {
	bl := &fakeBaselines{gates: map[int]chan struct{}{2024: make(chan struct{})}}
	s := newSession(&fakeBackend{}, bl, nil)

	errc := make(chan error, 1)
	go func() { errc <- s.LoadBaseline(context.Background(), 2024) }()
	eventually(t, func() bool { return s.Status().BaselineState == Loading })

	s.SetSeason(2023)
	close(bl.gates[2024])

	assert.True(t, errors.Is(<-errc, ErrSuperseded))
	assert.Nil(t, s.Baseline())
}

func TestRecentIsDeduplicatedMostRecentFirst(t *testing.T) {
	s := newSession(&fakeBackend{}, &fakeBaselines{}, nil)
	ctx := context.Background()
	for _, team := range []string{"NYY", "BOS", "NYY", "TB"} {
		require.NoError(t, s.LoadSplits(ctx, model.Selection{Team: team, Season: 2024}))
	}
	var got []string
	for _, r := range s.Recent() {
		got = append(got, r.Team)
	}
	assert.Equal(t, []string{"TB", "NYY", "BOS"}, got)
}

func TestRecentIsBounded(t *testing.T) {
	s := newSession(&fakeBackend{}, &fakeBaselines{}, nil)
	for i := 0; i < maxRecent+5; i++ {
		require.NoError(t, s.LoadSplits(context.Background(), model.Selection{Team: "T", PlayerID: string(rune('a' + i)), Season: 2024}))
	}
	assert.Len(t, s.Recent(), maxRecent)
}

func TestPayloadCacheWriteThroughAndHit(t *testing.T) {
	b := &fakeBackend{}
	c := &memCache{}
	s := newSession(b, &fakeBaselines{}, c)
	sel := model.Selection{Team: "NYY", Season: 2024}

	require.NoError(t, s.LoadSplits(context.Background(), sel))
	require.NoError(t, s.LoadSplits(context.Background(), sel))

	assert.Equal(t, 1, b.calls)
	assert.Contains(t, c.data, sel.Key())
}

func TestStaleSearchIsDropped(t *testing.T) {
	b := &fakeBackend{hits: map[string][]model.Candidate{
		"jud":   {{ID: "1", Name: "Aaron Judge"}},
		"judge": {{ID: "1", Name: "Aaron Judge"}},
	}}
	release := b.gate("search:jud")
	s := newSession(b, &fakeBaselines{}, nil)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Search(context.Background(), "jud")
		errc <- err
	}()
	eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.search.seq == 1
	})

	hits, err := s.Search(context.Background(), "judge")
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	close(release)
	assert.True(t, errors.Is(<-errc, ErrSuperseded))
}
