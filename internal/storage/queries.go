package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/c-tram/cycle-splits/internal/model"
)

// PayloadInfo describes one cached macro-split payload.
type PayloadInfo struct {
	Selection  model.Selection
	RawSize    int
	StoredSize int
	FetchedAt  time.Time
}

// PutPayload stores the raw macro-split body for sel, replacing any older copy.
func (db *DB) PutPayload(ctx context.Context, sel model.Selection, body []byte) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO payloads(team, player_id, season, body, raw_size, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sel.Team, sel.PlayerID, sel.Season, compress(body), len(body), now(),
	)
	if err != nil {
		return fmt.Errorf("store payload %s: %w", sel, err)
	}
	return nil
}

// GetPayload returns the cached body for sel. ok is false when nothing is cached.
func (db *DB) GetPayload(ctx context.Context, sel model.Selection) ([]byte, bool, error) {
	var blob []byte
	err := db.conn.QueryRowContext(ctx,
		"SELECT body FROM payloads WHERE team = ? AND player_id = ? AND season = ?",
		sel.Team, sel.PlayerID, sel.Season,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read payload %s: %w", sel, err)
	}
	body, err := decompress(blob)
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// DeletePayload removes the cached body for sel. It reports whether a row existed.
func (db *DB) DeletePayload(ctx context.Context, sel model.Selection) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM payloads WHERE team = ? AND player_id = ? AND season = ?",
		sel.Team, sel.PlayerID, sel.Season,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListPayloads returns every cached payload, newest first.
func (db *DB) ListPayloads(ctx context.Context) ([]PayloadInfo, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT team, player_id, season, raw_size, length(body), fetched_at
		FROM payloads ORDER BY fetched_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PayloadInfo
	for rows.Next() {
		var p PayloadInfo
		var fetched string
		if err := rows.Scan(&p.Selection.Team, &p.Selection.PlayerID, &p.Selection.Season,
			&p.RawSize, &p.StoredSize, &fetched); err != nil {
			return nil, err
		}
		p.FetchedAt, _ = time.Parse(timeLayout, fetched)
		out = append(out, p)
	}
	return out, rows.Err()
}

// PutBaseline stores the raw league baseline body for season.
func (db *DB) PutBaseline(ctx context.Context, season int, body []byte) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO baselines(season, body, raw_size, fetched_at)
		VALUES (?, ?, ?, ?)`,
		season, compress(body), len(body), now(),
	)
	if err != nil {
		return fmt.Errorf("store baseline %d: %w", season, err)
	}
	return nil
}

// GetBaseline returns the cached baseline body for season.
func (db *DB) GetBaseline(ctx context.Context, season int) ([]byte, bool, error) {
	var blob []byte
	err := db.conn.QueryRowContext(ctx, "SELECT body FROM baselines WHERE season = ?", season).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read baseline %d: %w", season, err)
	}
	body, err := decompress(blob)
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// QueryRaw runs an arbitrary query and returns column names and every row
// rendered as strings. NULL renders as "NULL". Compressed payload bodies are
// decoded to compact JSON, cut to width runes when width > 0; any other blob
// renders as its size.
func (db *DB) QueryRaw(query string, width int) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = blobCell(x, width)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func blobCell(blob []byte, width int) string {
	body, err := decompress(blob)
	if err != nil || !gjson.ValidBytes(body) {
		return fmt.Sprintf("<%d bytes>", len(blob))
	}
	text := []rune(string(pretty.Ugly(body)))
	if width > 0 && len(text) > width {
		return string(text[:width-1]) + "…"
	}
	return string(text)
}

// timeLayout is fixed-width so fetched_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func now() string {
	return time.Now().UTC().Format(timeLayout)
}
