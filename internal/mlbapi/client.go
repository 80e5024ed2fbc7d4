// Package mlbapi is a minimal client for the stats backend that serves player
// search, macro-split payloads and league baselines.
package mlbapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/c-tram/cycle-splits/internal/model"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:8080"

// maxBody caps how much of a response is read.
const maxBody = 32 << 20

// Client talks to the stats backend.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient returns a client for baseURL. apiKey may be empty.
func NewClient(baseURL, apiKey string, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// get performs a GET against the backend and returns the body, which must be
// valid JSON.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("path", path).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", path, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("GET %s: response is not valid JSON", path)
	}
	return body, nil
}

// SearchPlayers returns candidates matching query. Duplicate IDs are dropped;
// the first occurrence wins. The response may be a bare array or an object
// with a "results" or "players" array.
func (c *Client) SearchPlayers(ctx context.Context, query string) ([]model.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	body, err := c.get(ctx, "/api/search/players", url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}
	return parseCandidates(body), nil
}

func parseCandidates(body []byte) []model.Candidate {
	root := gjson.ParseBytes(body)
	list := root
	if !root.IsArray() {
		list = root.Get("results")
		if !list.IsArray() {
			list = root.Get("players")
		}
	}

	seen := make(map[string]bool)
	var out []model.Candidate
	list.ForEach(func(_, v gjson.Result) bool {
		id := v.Get("id").String()
		if id == "" || seen[id] {
			return true
		}
		seen[id] = true
		name := v.Get("name").String()
		if name == "" {
			name = v.Get("fullName").String()
		}
		out = append(out, model.Candidate{
			ID:       id,
			Name:     name,
			Team:     v.Get("team").String(),
			Position: v.Get("position").String(),
		})
		return true
	})
	return out
}

// MacroSplits returns the raw macro-split payload for a selection.
func (c *Client) MacroSplits(ctx context.Context, sel model.Selection) ([]byte, error) {
	q := url.Values{"season": {strconv.Itoa(sel.Season)}}
	if sel.PlayerID != "" {
		q.Set("playerId", sel.PlayerID)
	}
	return c.get(ctx, "/api/splits/"+url.PathEscape(sel.Team)+"/macro", q)
}

// Baseline returns the raw league baseline payload for a season.
func (c *Client) Baseline(ctx context.Context, season int) ([]byte, error) {
	return c.get(ctx, "/api/league/baseline", url.Values{"season": {strconv.Itoa(season)}})
}
