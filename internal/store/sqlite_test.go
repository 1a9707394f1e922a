package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if _, err := db.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	if err := db.Put(ctx, "state", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Failed to put: %v", err)
	}
	if err := db.Put(ctx, "state", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Failed to overwrite: %v", err)
	}
	got, err := db.Get(ctx, "state")
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if string(got) != `{"a":2}` {
		t.Errorf("Expected latest value, got %s", got)
	}
	if _, err := db.UpdatedAt(ctx, "state"); err != nil {
		t.Errorf("Expected write time, got %v", err)
	}

	if err := db.Delete(ctx, "state"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := db.Get(ctx, "state"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := db.Delete(ctx, "state"); err != nil {
		t.Errorf("Deleting a missing key should succeed, got %v", err)
	}
}

func TestMigrationIdempotency(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scoremaster.db")

	db, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	if err := db.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Failed to put: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("Failed to migrate again: %v", err)
		}
	}
	version, err := db.Version(ctx)
	if err != nil {
		t.Fatalf("Failed to read version: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected schema version 1, got %d", version)
	}
	db.Close()

	reopened, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Data integrity issue after reopening: got %q (%v)", got, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), "  "); err == nil {
		t.Fatal("Expected an error for an empty path")
	}
}
