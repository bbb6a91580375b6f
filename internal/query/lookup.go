package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/feedql/internal/cursor"
)

// Author is an author row resolved by lookup.
type Author struct {
	ID  int64  `json:"id"`
	Ref string `json:"ref"`
}

// Post is a post located by key.
type Post struct {
	KeyID int64  `json:"key_id"`
	Key   string `json:"key"`
}

// Thread is a thread located through its root post.
type Thread struct {
	Root Post `json:"root"`
}

// DbCursor returns the cursor of the most recently indexed record, or nil
// when the index is empty.
func (e *Engine) DbCursor(ctx context.Context) (*string, error) {
	seq, ok, err := e.store.MaxSeq(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	c := cursor.Encode(seq)
	return &c, nil
}

// CurrentAuthor returns the author with publishing rights on this machine -
// the identity established once at startup. Nil when no identity is set.
func (e *Engine) CurrentAuthor(ctx context.Context) (*Author, error) {
	rows, err := e.store.Query(ctx, `SELECT id, author FROM authors WHERE is_me = 1`)
	if err != nil {
		return nil, fmt.Errorf("current author: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var a Author
	if err := rows.Scan(&a.ID, &a.Ref); err != nil {
		return nil, fmt.Errorf("current author: scan: %w", err)
	}
	return &a, nil
}

// Thread finds a thread by the key string of its root message. Nil when the
// key has no indexed message (a bare forward reference is not a thread).
func (e *Engine) Thread(ctx context.Context, rootKey string) (*Thread, error) {
	post, err := e.Post(ctx, rootKey)
	if err != nil || post == nil {
		return nil, err
	}
	return &Thread{Root: *post}, nil
}

// ThreadForPost finds the containing thread for any post message, including
// the root message itself.
func (e *Engine) ThreadForPost(ctx context.Context, postKey string) (*Thread, error) {
	var keyID int64
	var rootKeyID sql.NullInt64
	err := e.store.DB().QueryRowContext(ctx, `
		SELECT messages.key_id, messages.root_key_id
		FROM messages
		JOIN keys ON messages.key_id = keys.id
		WHERE keys.key = ?
	`, postKey).Scan(&keyID, &rootKeyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("thread for post: %w", err)
	}

	// A post with a root belongs to that root's thread; otherwise it is
	// the root.
	rootID := keyID
	if rootKeyID.Valid {
		rootID = rootKeyID.Int64
	}

	key, ok, err := e.store.KeyByID(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("thread for post: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &Thread{Root: Post{KeyID: rootID, Key: key}}, nil
}

// Post finds a post by key string. Nil when no indexed message carries the
// key.
func (e *Engine) Post(ctx context.Context, key string) (*Post, error) {
	var keyID int64
	err := e.store.DB().QueryRowContext(ctx, `
		SELECT messages.key_id
		FROM messages
		JOIN keys ON messages.key_id = keys.id
		WHERE keys.key = ?
	`, key).Scan(&keyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("post: %w", err)
	}
	return &Post{KeyID: keyID, Key: key}, nil
}

// Author finds an author by public identifier. Nil when unknown.
func (e *Engine) Author(ctx context.Context, ref string) (*Author, error) {
	var id int64
	err := e.store.DB().QueryRowContext(ctx, `SELECT id FROM authors WHERE author = ?`, ref).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("author: %w", err)
	}
	return &Author{ID: id, Ref: ref}, nil
}

// Message returns the opaque stored content of a message by key string.
// (nil, false, nil) when the key has no indexed message.
func (e *Engine) Message(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var content sql.NullString
	err := e.store.DB().QueryRowContext(ctx, `
		SELECT messages.content
		FROM messages
		JOIN keys ON messages.key_id = keys.id
		WHERE keys.key = ?
	`, key).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("message: %w", err)
	}
	if !content.Valid {
		return nil, true, nil
	}
	return json.RawMessage(content.String), true, nil
}

// MessageTypes lists the distinct content types the index has seen.
func (e *Engine) MessageTypes(ctx context.Context) ([]string, error) {
	rows, err := e.store.Query(ctx, `
		SELECT DISTINCT content_type FROM messages
		WHERE content_type IS NOT NULL
		ORDER BY content_type
	`)
	if err != nil {
		return nil, fmt.Errorf("message types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("message types: scan: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("message types: iterate: %w", err)
	}
	return types, nil
}

// Authors is the free-text author search.
func (e *Engine) Authors(ctx context.Context, queryString string) ([]Author, error) {
	return nil, &NotImplementedError{Feature: "author search"}
}

// MessagesByType lists messages of a given content type.
func (e *Engine) MessagesByType(ctx context.Context, contentType string) ([]Post, error) {
	return nil, &NotImplementedError{Feature: "messages by type"}
}

// Links searches for links from or to a message.
func (e *Engine) Links(ctx context.Context, from, to *string) ([]Post, error) {
	return nil, &NotImplementedError{Feature: "link search"}
}
