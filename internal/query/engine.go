package query

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/feedql/internal/store"
)

// TextMatcher is the text-search collaborator: it maps a free-text query to
// the set of matching message key ids. Post search consumes it only as an
// AND-filter; the index internals stay on the other side of this interface.
type TextMatcher interface {
	MatchTexts(ctx context.Context, query string) ([]int64, error)
}

// Engine serves thread and post searches over the index. Read-only; safe for
// concurrent use and safe to run against a database the ingestion writer is
// appending to.
type Engine struct {
	store  *store.Store
	texts  TextMatcher
	logger *slog.Logger
}

// NewEngine creates a query engine over the given store. A nil matcher
// defaults to the store's own text index.
func NewEngine(s *store.Store, texts TextMatcher, logger *slog.Logger) *Engine {
	if texts == nil {
		texts = s
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: s, texts: texts, logger: logger}
}

// collect runs a compiled search and scans the uniform edge row shape.
func (e *Engine) collect(ctx context.Context, sqlText string, params []any) ([]edgeRow, error) {
	rows, err := e.store.Query(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("run search: %w", err)
	}
	defer rows.Close()

	var out []edgeRow
	for rows.Next() {
		var r edgeRow
		var asserted sql.NullInt64
		if err := rows.Scan(&r.keyID, &r.key, &r.seq, &asserted); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		r.asserted = asserted.Int64
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return out, nil
}
