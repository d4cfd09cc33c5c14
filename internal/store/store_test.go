package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		"metadata_entries",
	).Scan(&name)
	if err != nil {
		t.Errorf("table not found after idempotent opens: %v", err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpenWithOptions_CacheSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := OpenWithOptions(path, Options{CacheSize: 3})
	if err != nil {
		t.Fatalf("OpenWithOptions() failed: %v", err)
	}
	defer s.Close()

	md, size := sampleMetadata(t)
	ctx := context.Background()
	for _, key := range []string{"a-1", "a-2", "a-3", "a-4"} {
		if _, err := s.Put(ctx, key, size, md); err != nil {
			t.Fatalf("Put(%q) failed: %v", key, err)
		}
	}

	if got := s.front.Len(); got != 3 {
		t.Errorf("front cache holds %d entries, want 3", got)
	}
	if s.front.Contains("a-1") {
		t.Error("oldest key should have been evicted from the front cache")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPragmas(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"user_version", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.verifyPragma(ctx, tt.name, tt.expected); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestMigrateToV1_CreatesHashIndex(t *testing.T) {
	s, _ := createTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name=?",
		"idx_metadata_entries_hash",
	).Scan(&name)
	if err != nil {
		t.Errorf("hash index missing: %v", err)
	}
}

func TestKey(t *testing.T) {
	if got := Key("polkadot", 9430); got != "polkadot-9430" {
		t.Errorf("Key() = %q, want %q", got, "polkadot-9430")
	}
}
