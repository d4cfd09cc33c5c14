package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/danforbes/dots/internal/ir"
)

// Put stores md under key, replacing any previous entry for the key.
// rawSize is the length of the metadata blob md was decoded from.
//
// The entry takes the next seq value and a fresh UUIDv7 id, so a
// replaced key moves to the end of List.
func (s *Store) Put(ctx context.Context, key string, rawSize int, md *ir.Metadata) (Entry, error) {
	if key == "" {
		return Entry{}, fmt.Errorf("put metadata: empty key")
	}

	doc, err := marshalMetadata(md)
	if err != nil {
		return Entry{}, fmt.Errorf("put metadata %q: %w", key, err)
	}
	hash, err := ir.MetadataHash(md)
	if err != nil {
		return Entry{}, fmt.Errorf("put metadata %q: %w", key, err)
	}

	entry := Entry{
		ID:            uuid.Must(uuid.NewV7()).String(),
		Key:           key,
		Hash:          hash,
		SchemaVersion: ir.SchemaVersion,
		ToolVersion:   ir.ToolVersion,
		RawSize:       rawSize,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("put metadata %q: begin: %w", key, err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM metadata_entries`,
	).Scan(&entry.Seq); err != nil {
		return Entry{}, fmt.Errorf("put metadata %q: next seq: %w", key, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO metadata_entries
		(id, cache_key, content_hash, schema_version, tool_version, raw_size, metadata, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			id = excluded.id,
			content_hash = excluded.content_hash,
			schema_version = excluded.schema_version,
			tool_version = excluded.tool_version,
			raw_size = excluded.raw_size,
			metadata = excluded.metadata,
			seq = excluded.seq
	`,
		entry.ID,
		entry.Key,
		entry.Hash,
		entry.SchemaVersion,
		entry.ToolVersion,
		entry.RawSize,
		doc,
		entry.Seq,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("put metadata %q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("put metadata %q: commit: %w", key, err)
	}

	s.front.Add(key, md)
	return entry, nil
}

// Delete removes the entry for key. It reports whether an entry existed.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	s.front.Remove(key)

	res, err := s.db.ExecContext(ctx, `DELETE FROM metadata_entries WHERE cache_key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("delete metadata %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete metadata %q: %w", key, err)
	}
	return n > 0, nil
}

// Clear removes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	s.front.Purge()

	res, err := s.db.ExecContext(ctx, `DELETE FROM metadata_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear metadata: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear metadata: %w", err)
	}
	return n, nil
}
