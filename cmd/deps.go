package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/c-tram/cycle-splits/internal/baseline"
	"github.com/c-tram/cycle-splits/internal/mlbapi"
	"github.com/c-tram/cycle-splits/internal/model"
	"github.com/c-tram/cycle-splits/internal/rediscache"
	"github.com/c-tram/cycle-splits/internal/session"
	"github.com/c-tram/cycle-splits/internal/storage"
)

// payloadCache is satisfied by both the SQLite store and Redis.
type payloadCache interface {
	session.Cache
	baseline.Cache
	DeletePayload(ctx context.Context, sel model.Selection) (bool, error)
}

// deps wires the backend client, the cache and the baseline provider.
type deps struct {
	db        *storage.DB
	redis     *rediscache.Cache
	cache     payloadCache
	client    *mlbapi.Client
	baselines *baseline.Provider
}

// openDeps opens the cache (Redis when REDIS_URL is set and reachable, else
// the SQLite file at --db) and the backend client.
func openDeps(ctx context.Context) (*deps, error) {
	d := &deps{client: mlbapi.NewClient(cfg.APIURL, cfg.APIKey, log)}

	if cfg.RedisURL != "" {
		rc, err := rediscache.Open(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using sqlite cache")
		} else {
			d.redis = rc
			d.cache = rc
		}
	}
	if d.cache == nil {
		db, err := openDB()
		if err != nil {
			return nil, err
		}
		d.db = db
		d.cache = db
	}
	d.baselines = baseline.NewProvider(d.client, d.cache, log)
	return d, nil
}

func (d *deps) newSession() *session.Session {
	return session.New(d.client, d.cache, d.baselines, cfg.Season, log)
}

func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.redis != nil {
		d.redis.Close()
	}
}

// openDB opens the SQLite cache, creating its directory on first use.
func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// selection builds a Selection for the configured season.
func selection(team, player string) model.Selection {
	return model.Selection{Team: normalizeTeam(team), PlayerID: player, Season: cfg.Season}
}

func normalizeTeam(team string) string {
	return strings.ToUpper(strings.TrimSpace(team))
}

// splitKeys breaks a comma-separated key list, dropping blanks.
func splitKeys(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
