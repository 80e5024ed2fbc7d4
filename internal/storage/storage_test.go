package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/c-tram/cycle-splits/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPayloadRoundTrip(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	sel := model.Selection{Team: "NYY", PlayerID: "592450", Season: 2024}
	body := bytes.Repeat([]byte(`{"by_location":{"home":{"atBats":4}}}`), 50)

	if _, ok, err := db.GetPayload(ctx, sel); err != nil || ok {
		t.Fatalf("expected miss before insert, got ok=%v err=%v", ok, err)
	}
	if err := db.PutPayload(ctx, sel, body); err != nil {
		t.Fatalf("PutPayload: %v", err)
	}
	got, ok, err := db.GetPayload(ctx, sel)
	if err != nil || !ok {
		t.Fatalf("GetPayload: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, body) {
		t.Error("payload body changed in storage")
	}

	// Another player on the same team is a different key.
	if _, ok, _ := db.GetPayload(ctx, model.Selection{Team: "NYY", Season: 2024}); ok {
		t.Error("expected team-level selection to miss")
	}
}

func TestPayloadReplace(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	sel := model.Selection{Team: "BOS", Season: 2023}

	db.PutPayload(ctx, sel, []byte(`{"v":1}`))
	db.PutPayload(ctx, sel, []byte(`{"v":2}`))

	got, _, _ := db.GetPayload(ctx, sel)
	if string(got) != `{"v":2}` {
		t.Errorf("expected replaced body, got %s", got)
	}
	list, err := db.ListPayloads(ctx)
	if err != nil {
		t.Fatalf("ListPayloads: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 payload, got %d", len(list))
	}
}

func TestListPayloads(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	body := bytes.Repeat([]byte("x"), 4096)

	db.PutPayload(ctx, model.Selection{Team: "NYY", Season: 2024}, body)
	db.PutPayload(ctx, model.Selection{Team: "TB", PlayerID: "1", Season: 2024}, body)

	list, err := db.ListPayloads(ctx)
	if err != nil {
		t.Fatalf("ListPayloads: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(list))
	}
	// Newest first.
	if list[0].Selection.Team != "TB" {
		t.Errorf("expected TB first, got %s", list[0].Selection.Team)
	}
	if list[0].RawSize != 4096 {
		t.Errorf("expected raw size 4096, got %d", list[0].RawSize)
	}
	if list[0].StoredSize >= list[0].RawSize {
		t.Errorf("expected compressed size below %d, got %d", list[0].RawSize, list[0].StoredSize)
	}
	if list[0].FetchedAt.IsZero() {
		t.Error("expected fetched_at to parse")
	}
}

func TestDeletePayload(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	sel := model.Selection{Team: "SEA", Season: 2022}
	db.PutPayload(ctx, sel, []byte(`{}`))

	deleted, err := db.DeletePayload(ctx, sel)
	if err != nil || !deleted {
		t.Fatalf("DeletePayload: deleted=%v err=%v", deleted, err)
	}
	deleted, _ = db.DeletePayload(ctx, sel)
	if deleted {
		t.Error("expected second delete to report nothing removed")
	}
}

func TestBaselineRoundTrip(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	body := []byte(`{"batting":{"avg":0.243}}`)

	if err := db.PutBaseline(ctx, 2024, body); err != nil {
		t.Fatalf("PutBaseline: %v", err)
	}
	got, ok, err := db.GetBaseline(ctx, 2024)
	if err != nil || !ok || string(got) != string(body) {
		t.Fatalf("GetBaseline: %s ok=%v err=%v", got, ok, err)
	}
	if _, ok, _ := db.GetBaseline(ctx, 2023); ok {
		t.Error("expected miss for 2023")
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	db.PutBaseline(ctx, 2024, []byte(`{"batting": {"avg": 0.248, "obp": 0.312}}`))

	cols, rows, err := db.QueryRaw("SELECT season, body, NULL AS nothing FROM baselines", 0)
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 3 || cols[0] != "season" {
		t.Fatalf("unexpected columns %v", cols)
	}
	if len(rows) != 1 || rows[0][0] != "2024" || rows[0][2] != "NULL" {
		t.Fatalf("unexpected rows %v", rows)
	}

	if got := rows[0][1]; got != `{"batting":{"avg":0.248,"obp":0.312}}` {
		t.Errorf("body = %q, want decoded compact JSON", got)
	}

	_, rows, err = db.QueryRaw("SELECT body, X'0102' AS raw FROM baselines", 12)
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if got := rows[0][0]; got != `{"batting":…` {
		t.Errorf("truncated body = %q", got)
	}
	if got := rows[0][1]; got != "<2 bytes>" {
		t.Errorf("raw blob = %q, want <2 bytes>", got)
	}

	if _, _, err := db.QueryRaw("SELECT * FROM nope", 0); err == nil {
		t.Error("expected error for unknown table")
	}
}
