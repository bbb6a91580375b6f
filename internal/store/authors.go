package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// FindOrCreateAuthor returns the surrogate id for an author's public
// identifier, registering it first if unseen. Same upsert discipline as
// FindOrCreateKey.
func (s *Store) FindOrCreateAuthor(ctx context.Context, author string) (int64, error) {
	return findOrCreateAuthor(ctx, s.db, author)
}

func findOrCreateAuthor(ctx context.Context, q execer, author string) (int64, error) {
	if author == "" {
		return 0, fmt.Errorf("find or create author: empty author string")
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO authors (author) VALUES (?)
		ON CONFLICT(author) DO NOTHING
	`, author)
	if err != nil {
		return 0, fmt.Errorf("find or create author: insert: %w", err)
	}

	var id int64
	err = q.QueryRowContext(ctx, `SELECT id FROM authors WHERE author = ?`, author).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("find or create author: select: %w", err)
	}
	return id, nil
}

// SetIsMe marks the operator's own feed identity. Exactly one author row
// carries is_me at any time; calling again with a different key moves the
// flag rather than leaving two.
func (s *Store) SetIsMe(ctx context.Context, author string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set is_me: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	id, err := findOrCreateAuthor(ctx, tx, author)
	if err != nil {
		return fmt.Errorf("set is_me: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE authors SET is_me = (id = ?)`, id); err != nil {
		return fmt.Errorf("set is_me: update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set is_me: commit: %w", err)
	}
	return nil
}

// CurrentAuthorID returns the surrogate id of the is_me author.
// Returns (0, false, nil) when no identity has been set.
func (s *Store) CurrentAuthorID(ctx context.Context) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM authors WHERE is_me = 1`).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("current author: %w", err)
	}
	return id, true, nil
}

// AuthorIDs resolves public identifier strings to surrogate ids, silently
// dropping unknown identifiers (an unknown author matches nothing, which is
// the NotFound-as-empty contract).
func (s *Store) AuthorIDs(ctx context.Context, authors []string) ([]int64, error) {
	ids := make([]int64, 0, len(authors))
	for _, author := range authors {
		var id int64
		err := s.db.QueryRowContext(ctx, `SELECT id FROM authors WHERE author = ?`, author).Scan(&id)
		if err != nil {
			if isNoRows(err) {
				continue
			}
			return nil, fmt.Errorf("author ids: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FollowedAuthorIDs resolves identifier strings to the ids of authors they
// actively follow, through the contacts edge with the following state only.
// Blocked and neutral edges never match.
func (s *Store) FollowedAuthorIDs(ctx context.Context, authors []string) ([]int64, error) {
	ids := []int64{}
	for _, author := range authors {
		rows, err := s.db.QueryContext(ctx, `
			SELECT c.contact_author_id
			FROM contacts c
			JOIN authors a ON a.id = c.author_id
			WHERE a.author = ? AND c.state = 1
		`, author)
		if err != nil {
			return nil, fmt.Errorf("followed author ids: %w", err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("followed author ids: scan: %w", err)
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("followed author ids: iterate: %w", err)
		}
		rows.Close()
	}
	return ids, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
