package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrTextIndexUnavailable is returned by MatchTexts when SQLite was built
// without the fts5 module (the sqlite_fts5 build tag).
var ErrTextIndexUnavailable = errors.New("text index unavailable: sqlite built without fts5")

// TextSearchAvailable reports whether the FTS text index is usable on this
// handle.
func (s *Store) TextSearchAvailable() bool {
	return s.hasTexts
}

// MatchTexts returns the key ids of messages whose indexed text matches the
// FTS query. This is the text-search collaborator consumed by post search;
// the index internals stay behind this method.
func (s *Store) MatchTexts(ctx context.Context, query string) ([]int64, error) {
	if !s.hasTexts {
		return nil, ErrTextIndexUnavailable
	}

	rows, err := s.db.QueryContext(ctx, `SELECT rowid FROM texts WHERE text MATCH ?`, query)
	if err != nil {
		return nil, fmt.Errorf("match texts: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("match texts: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match texts: iterate: %w", err)
	}
	return ids, nil
}
