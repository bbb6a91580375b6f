package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/feedql/internal/metrics"
	"github.com/roach88/feedql/internal/offsetlog"
	"github.com/roach88/feedql/internal/ssb"
	"github.com/roach88/feedql/internal/store"
)

// Unboxer supplies readable content for a message. Decryption of private
// messages lives outside the index core; the index only records the flag the
// collaborator reports.
type Unboxer interface {
	// Unbox returns the content to index and whether it was decrypted from
	// a boxed payload. Content it cannot open comes back unchanged with
	// decrypted=false.
	Unbox(author string, content json.RawMessage) (json.RawMessage, bool)
}

// PassthroughUnboxer performs no decryption: boxed payloads stay boxed and
// nothing is marked decrypted.
type PassthroughUnboxer struct{}

func (PassthroughUnboxer) Unbox(_ string, content json.RawMessage) (json.RawMessage, bool) {
	return content, false
}

// Storer is the slice of the store the indexer writes through.
type Storer interface {
	IndexMessage(ctx context.Context, rec store.IndexRecord) error
	TextSearchAvailable() bool
}

// Indexer turns offset log entries into index records.
type Indexer struct {
	store     Storer
	unboxer   Unboxer
	validator *contentValidator
	logger    *slog.Logger
}

// NewIndexer builds an indexer over the given store. A nil unboxer defaults
// to PassthroughUnboxer; a nil logger defaults to slog.Default().
func NewIndexer(s Storer, unboxer Unboxer, logger *slog.Logger) (*Indexer, error) {
	validator, err := newContentValidator()
	if err != nil {
		return nil, fmt.Errorf("new indexer: %w", err)
	}
	if unboxer == nil {
		unboxer = PassthroughUnboxer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		store:     s,
		unboxer:   unboxer,
		validator: validator,
		logger:    logger,
	}, nil
}

// ProcessEntry materializes one log entry. Parse failures come back as
// *RecordError so the caller can skip the record; storage failures come back
// as-is and should stop the run.
func (ix *Indexer) ProcessEntry(ctx context.Context, entry offsetlog.Entry) error {
	env, err := ssb.ParseEnvelope(entry.Data)
	if err != nil {
		return &RecordError{Seq: entry.Seq, Err: err}
	}

	content, decrypted := ix.unboxer.Unbox(env.Value.Author, env.Value.Content)

	rec := store.IndexRecord{
		FlumeSeq:     entry.Seq,
		Key:          env.Key,
		Seq:          env.Value.Sequence,
		ReceivedTime: env.Timestamp,
		Author:       env.Value.Author,
		Content:      content,
		IsDecrypted:  decrypted,
	}
	if env.Value.Timestamp != 0 {
		asserted := env.Value.Timestamp
		rec.AssertedTime = &asserted
	}

	if c, ok := ssb.ParseContent(content); ok {
		rec.ContentType = c.Type
		rec.Root = c.Root
		rec.Fork = c.Fork
		ix.extractDerived(&rec, c, content)
	}

	return ix.store.IndexMessage(ctx, rec)
}

// extractDerived fills the derived-view inputs for typed content. Content
// failing shape validation is still indexed as a plain message, just without
// derived rows beyond the root/fork references.
func (ix *Indexer) extractDerived(rec *store.IndexRecord, c *ssb.Content, raw json.RawMessage) {
	if err := ix.validator.Validate(c.Type, raw); err != nil {
		ix.logger.Debug("content failed shape validation",
			"seq", rec.FlumeSeq,
			"type", c.Type,
			"err", err,
		)
		return
	}

	switch c.Type {
	case "post":
		rec.Text = ssb.NormalizeText(c.Text)
		for _, m := range c.Mentions {
			if ssb.IsAuthorLink(m.Link) {
				rec.MentionAuthors = append(rec.MentionAuthors, m.Link)
			}
		}
	case "contact":
		rec.Contact = &store.ContactDelta{
			ContactAuthor: c.Contact,
			State:         c.ContactState(),
		}
	}
}

// RunStats summarizes one ingestion run.
type RunStats struct {
	Indexed int64
	Skipped int64
	// LastSeq is the sequence of the last successfully indexed record.
	// Only meaningful when Indexed > 0.
	LastSeq int64
}

// Run drains the reader into the store. Malformed records are counted,
// logged and skipped; only storage failures or context cancellation stop
// the run early.
func (ix *Indexer) Run(ctx context.Context, r *offsetlog.Reader) (RunStats, error) {
	run := uuid.Must(uuid.NewV7()).String()
	log := ix.logger.With("run", run)
	log.Info("ingestion starting", "offset", r.Offset(), "text_search", ix.store.TextSearchAvailable())

	var stats RunStats
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		entry, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}

		if err := ix.ProcessEntry(ctx, entry); err != nil {
			var re *RecordError
			if errors.As(err, &re) {
				stats.Skipped++
				metrics.RecordErrors.Inc()
				log.Warn("skipping malformed record", "seq", re.Seq, "err", re.Err)
				continue
			}
			return stats, err
		}

		stats.Indexed++
		stats.LastSeq = entry.Seq
		metrics.MessagesIndexed.Inc()
	}

	log.Info("ingestion complete", "indexed", stats.Indexed, "skipped", stats.Skipped)
	return stats, nil
}
