package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, FileName)); os.IsNotExist(err) {
		t.Error("state.db should exist")
	}
	if db.Path() != filepath.Join(dir, FileName) {
		t.Errorf("Path() = %q", db.Path())
	}
}

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		db, err := Open(dir)
		if err != nil {
			t.Fatalf("Open() #%d error: %v", i+1, err)
		}
		db.Close()
	}
}

// ─── Blobs ──────────────────────────────────────────────────────────────────

func TestBlob_MissingKey(t *testing.T) {
	db := newTestDB(t)

	v, ok, err := db.GetBlob(context.Background(), "streak")
	if err != nil {
		t.Fatalf("GetBlob() error: %v", err)
	}
	if ok || v != nil {
		t.Errorf("expected missing key, got ok=%v v=%q", ok, v)
	}
}

func TestBlob_PutGetReplace(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.PutBlob(ctx, "streak", []byte(`{"currentStreak":1}`)); err != nil {
		t.Fatalf("PutBlob() error: %v", err)
	}
	if err := db.PutBlob(ctx, "streak", []byte(`{"currentStreak":2}`)); err != nil {
		t.Fatalf("PutBlob() replace error: %v", err)
	}

	v, ok, err := db.GetBlob(ctx, "streak")
	if err != nil || !ok {
		t.Fatalf("GetBlob() = ok %v, err %v", ok, err)
	}
	if string(v) != `{"currentStreak":2}` {
		t.Errorf("value = %s", v)
	}
}

func TestBlob_PutBlobs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.PutBlobs(ctx, map[string][]byte{
		"progress":     []byte(`{}`),
		"achievements": []byte(`[]`),
		"streak":       []byte(`{}`),
	})
	if err != nil {
		t.Fatalf("PutBlobs() error: %v", err)
	}
	for _, key := range []string{"progress", "achievements", "streak"} {
		if _, ok, _ := db.GetBlob(ctx, key); !ok {
			t.Errorf("%s not stored", key)
		}
	}
}

func TestBlob_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.PutBlob(ctx, "achievements", []byte(`[{"id":"first_steps"}]`)); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	v, ok, err := db.GetBlob(ctx, "achievements")
	if err != nil || !ok || string(v) != `[{"id":"first_steps"}]` {
		t.Errorf("after reopen: %s ok=%v err=%v", v, ok, err)
	}
}

// ─── Meta ───────────────────────────────────────────────────────────────────

func TestMeta_Get(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if got, err := db.GetMeta(ctx, "missing"); err != nil || got != "" {
		t.Errorf("GetMeta(missing) = %q, %v", got, err)
	}
	id, err := db.DeviceID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := db.GetMeta(ctx, metaDeviceID); got != id {
		t.Errorf("GetMeta(%s) = %q, want %q", metaDeviceID, got, id)
	}
}

func TestDeviceID_StableAcrossCallsAndReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	first, err := db.DeviceID(ctx)
	if err != nil {
		t.Fatalf("DeviceID() error: %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Errorf("device id %q is not a UUID: %v", first, err)
	}
	again, _ := db.DeviceID(ctx)
	if again != first {
		t.Errorf("second call = %q, want %q", again, first)
	}
	db.Close()

	db, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if reopened, _ := db.DeviceID(ctx); reopened != first {
		t.Errorf("after reopen = %q, want %q", reopened, first)
	}
}
