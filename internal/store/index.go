package store

import (
	"context"
	"fmt"
)

// IndexRecord is the fully parsed form of one log record, ready to be
// materialized. The ingest pipeline owns parsing and content validation; the
// store owns key resolution and the atomic write.
type IndexRecord struct {
	// FlumeSeq is the global log sequence, assigned once by the offset log.
	FlumeSeq int64
	// Key is the message's own content-addressed identifier.
	Key string
	// Seq is the author-local protocol sequence number.
	Seq int64
	// ReceivedTime is the local receipt timestamp (epoch milliseconds).
	ReceivedTime float64
	// AssertedTime is the author-claimed timestamp; nil when absent.
	// Not guaranteed monotonic.
	AssertedTime *float64
	// Root and Fork are optional content-addressed references. They may
	// point at keys with no message yet (forward references).
	Root string
	Fork string
	// Author is the signing author's public identifier.
	Author string
	// ContentType is the structured content "type" field; empty for
	// opaque or undecryptable payloads.
	ContentType string
	// Content is the opaque serialized payload, stored verbatim.
	Content []byte
	// IsDecrypted is supplied by the upstream unboxing collaborator and
	// recorded verbatim.
	IsDecrypted bool

	// Derived-view inputs, extracted upstream from decrypted content.
	Text           string
	MentionAuthors []string
	Contact        *ContactDelta
}

// ContactDelta is a follow-state change carried by a contact message.
type ContactDelta struct {
	ContactAuthor string
	State         int
}

// IndexMessage materializes one log record: the message row, any
// forward-reference keys it mints, and all derived rows commit in a single
// transaction, so a concurrent reader never observes a half-applied record.
//
// Idempotent per sequence: re-indexing an already-seen FlumeSeq is a no-op
// (ON CONFLICT DO NOTHING on the primary key), which lets ingestion resume
// from a conservative log offset after a restart.
func (s *Store) IndexMessage(ctx context.Context, rec IndexRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index message: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	keyID, err := findOrCreateKey(ctx, tx, rec.Key)
	if err != nil {
		return fmt.Errorf("index message seq %d: %w", rec.FlumeSeq, err)
	}

	authorID, err := findOrCreateAuthor(ctx, tx, rec.Author)
	if err != nil {
		return fmt.Errorf("index message seq %d: %w", rec.FlumeSeq, err)
	}

	var rootKeyID, forkKeyID *int64
	if rec.Root != "" {
		id, err := findOrCreateKey(ctx, tx, rec.Root)
		if err != nil {
			return fmt.Errorf("index message seq %d: root: %w", rec.FlumeSeq, err)
		}
		rootKeyID = &id
	}
	if rec.Fork != "" {
		id, err := findOrCreateKey(ctx, tx, rec.Fork)
		if err != nil {
			return fmt.Errorf("index message seq %d: fork: %w", rec.FlumeSeq, err)
		}
		forkKeyID = &id
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO messages
		(flume_seq, key_id, seq, received_time, asserted_time, root_key_id,
		 fork_key_id, author_id, content_type, content, is_decrypted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(flume_seq) DO NOTHING
	`,
		rec.FlumeSeq,
		keyID,
		rec.Seq,
		rec.ReceivedTime,
		rec.AssertedTime,
		rootKeyID,
		forkKeyID,
		authorID,
		nullIfEmpty(rec.ContentType),
		string(rec.Content),
		rec.IsDecrypted,
	)
	if err != nil {
		return fmt.Errorf("index message seq %d: insert: %w", rec.FlumeSeq, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("index message seq %d: rows affected: %w", rec.FlumeSeq, err)
	}
	if affected == 0 {
		// Already indexed; derived rows were written with it.
		return tx.Commit()
	}

	if err := s.writeDerived(ctx, tx, rec, keyID, authorID, rootKeyID); err != nil {
		return fmt.Errorf("index message seq %d: %w", rec.FlumeSeq, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index message seq %d: commit: %w", rec.FlumeSeq, err)
	}
	return nil
}

// writeDerived maintains the derived views for a freshly inserted message.
// Runs inside the per-record transaction.
func (s *Store) writeDerived(ctx context.Context, tx execer, rec IndexRecord, keyID, authorID int64, rootKeyID *int64) error {
	if rec.ContentType == "post" {
		if rootKeyID == nil {
			var asserted *int64
			if rec.AssertedTime != nil {
				ms := int64(*rec.AssertedTime)
				asserted = &ms
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO root_posts (key_id, flume_seq, asserted_timestamp, author_id)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(key_id) DO NOTHING
			`, keyID, rec.FlumeSeq, asserted, authorID)
			if err != nil {
				return fmt.Errorf("root post: %w", err)
			}
		} else {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO reply_posts (root_post_id, key_id, author_id)
				VALUES (?, ?, ?)
			`, *rootKeyID, keyID, authorID)
			if err != nil {
				return fmt.Errorf("reply post: %w", err)
			}
		}

		if rec.Text != "" && s.hasTexts {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO texts (rowid, text) VALUES (?, ?)
			`, keyID, rec.Text)
			if err != nil {
				return fmt.Errorf("text index: %w", err)
			}
		}
	}

	for _, mentioned := range rec.MentionAuthors {
		toID, err := findOrCreateAuthor(ctx, tx, mentioned)
		if err != nil {
			return fmt.Errorf("mention: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO mentions (link_from_key_id, link_to_author_id)
			VALUES (?, ?)
		`, keyID, toID)
		if err != nil {
			return fmt.Errorf("mention: %w", err)
		}
	}

	if rec.Contact != nil {
		contactID, err := findOrCreateAuthor(ctx, tx, rec.Contact.ContactAuthor)
		if err != nil {
			return fmt.Errorf("contact: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO contacts (author_id, contact_author_id, state)
			VALUES (?, ?, ?)
			ON CONFLICT(author_id, contact_author_id) DO UPDATE SET state = excluded.state
		`, authorID, contactID, rec.Contact.State)
		if err != nil {
			return fmt.Errorf("contact: %w", err)
		}
	}

	return nil
}

// MaxSeq returns the highest indexed log sequence.
// Returns (0, false, nil) when the index is empty.
func (s *Store) MaxSeq(ctx context.Context) (int64, bool, error) {
	var seq *int64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(flume_seq) FROM messages`).Scan(&seq)
	if err != nil {
		return 0, false, fmt.Errorf("max seq: %w", err)
	}
	if seq == nil {
		return 0, false, nil
	}
	return *seq, true, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
