package store

import (
	"context"
	"fmt"
)

// FindOrCreateKey returns the surrogate id for a content-addressed key
// string, registering it first if unseen. Keys are never updated or deleted.
//
// Upsert semantics: two callers racing on the same unseen string still end up
// with exactly one row, because the insert is ON CONFLICT DO NOTHING against
// the UNIQUE constraint rather than check-then-insert.
func (s *Store) FindOrCreateKey(ctx context.Context, key string) (int64, error) {
	return findOrCreateKey(ctx, s.db, key)
}

// findOrCreateKey is the execer-generic form, used inside the per-record
// ingestion transaction so forward-reference keys commit atomically with
// their message row.
func findOrCreateKey(ctx context.Context, q execer, key string) (int64, error) {
	if key == "" {
		return 0, fmt.Errorf("find or create key: empty key string")
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO keys (key) VALUES (?)
		ON CONFLICT(key) DO NOTHING
	`, key)
	if err != nil {
		return 0, fmt.Errorf("find or create key: insert: %w", err)
	}

	var id int64
	err = q.QueryRowContext(ctx, `SELECT id FROM keys WHERE key = ?`, key).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("find or create key: select: %w", err)
	}
	return id, nil
}

// KeyByID returns the key string for a surrogate id.
// Returns ("", false, nil) when the id is unknown.
func (s *Store) KeyByID(ctx context.Context, id int64) (string, bool, error) {
	var key string
	err := s.db.QueryRowContext(ctx, `SELECT key FROM keys WHERE id = ?`, id).Scan(&key)
	if err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("key by id: %w", err)
	}
	return key, true, nil
}

// KeyID returns the surrogate id for a key string without creating it.
// Returns (0, false, nil) when the string is unregistered.
func (s *Store) KeyID(ctx context.Context, key string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM keys WHERE key = ?`, key).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("key id: %w", err)
	}
	return id, true, nil
}
