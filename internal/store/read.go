package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danforbes/dots/internal/ir"
)

// Entry describes one cached metadata document without its body.
type Entry struct {
	ID            string `json:"id" yaml:"id"`
	Key           string `json:"key" yaml:"key"`
	Hash          string `json:"hash" yaml:"hash"`
	SchemaVersion string `json:"schema_version" yaml:"schema_version"`
	ToolVersion   string `json:"tool_version" yaml:"tool_version"`
	RawSize       int    `json:"raw_size" yaml:"raw_size"`
	Seq           int64  `json:"seq" yaml:"seq"`
}

// Get returns the metadata cached under key. The boolean is false on a
// miss, including when the entry was written under another schema
// version.
func (s *Store) Get(ctx context.Context, key string) (*ir.Metadata, bool, error) {
	if md, ok := s.front.Get(key); ok {
		return md, true, nil
	}

	var schemaVersion, doc string
	err := s.db.QueryRowContext(ctx, `
		SELECT schema_version, metadata
		FROM metadata_entries
		WHERE cache_key = ?
	`, key).Scan(&schemaVersion, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get metadata %q: %w", key, err)
	}

	if schemaVersion != ir.SchemaVersion {
		slog.Debug("ignoring stale cache entry",
			"key", key,
			"schema_version", schemaVersion,
			"want", ir.SchemaVersion)
		return nil, false, nil
	}

	md, err := unmarshalMetadata(doc)
	if err != nil {
		return nil, false, fmt.Errorf("get metadata %q: %w", key, err)
	}

	s.front.Add(key, md)
	return md, true, nil
}

// Lookup returns the entry description for key.
func (s *Store) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, cache_key, content_hash, schema_version, tool_version, raw_size, seq
		FROM metadata_entries
		WHERE cache_key = ?
	`, key)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup metadata %q: %w", key, err)
	}
	return e, true, nil
}

// KeysForHash returns every key whose metadata has the given content
// hash, in seq order.
func (s *Store) KeysForHash(ctx context.Context, hash string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cache_key
		FROM metadata_entries
		WHERE content_hash = ?
		ORDER BY seq ASC, cache_key COLLATE BINARY ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query keys for hash: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

// List returns every entry in write order.
// Returns an empty slice (not nil) if the cache is empty.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cache_key, content_hash, schema_version, tool_version, raw_size, seq
		FROM metadata_entries
		ORDER BY seq ASC, cache_key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Key, &e.Hash, &e.SchemaVersion, &e.ToolVersion, &e.RawSize, &e.Seq)
	return e, err
}
