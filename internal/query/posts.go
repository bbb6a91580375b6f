package query

import (
	"context"
	"fmt"

	"github.com/roach88/feedql/internal/metrics"
	"github.com/roach88/feedql/internal/querysql"
)

// PostsArgs are the post-search inputs. All supplied filters are
// AND-combined - the opposite of thread search. Results are restricted to
// messages whose content type is "post".
type PostsArgs struct {
	Page    PageArgs
	Privacy Privacy
	OrderBy OrderBy

	// Query is a free-text filter resolved through the text-search
	// collaborator; empty means no text filter.
	Query string
	// Authors restricts to posts authored by the given authors.
	Authors []string
	// MentionsAuthors restricts to posts that mention the given authors.
	MentionsAuthors []string
}

// Posts searches for posts meeting ALL the supplied filters.
func (e *Engine) Posts(ctx context.Context, args PostsArgs) (*PostConnection, error) {
	win, err := resolveWindow(args.Page)
	if err != nil {
		return nil, err
	}
	ord := postOrdering(args.OrderBy)

	where := &querysql.Group{Op: querysql.OpAnd}
	where.Add(querysql.Cmp("messages.content_type", "=", "post"))

	if args.MentionsAuthors != nil {
		ids, err := e.store.AuthorIDs(ctx, args.MentionsAuthors)
		if err != nil {
			return nil, fmt.Errorf("posts: %w", err)
		}
		where.Add(querysql.In("mentions.link_to_author_id", ids))
	}

	if args.Query != "" {
		ids, err := e.texts.MatchTexts(ctx, args.Query)
		if err != nil {
			return nil, fmt.Errorf("posts: text match: %w", err)
		}
		where.Add(querysql.In("messages.key_id", ids))
	}

	addPrivacy(where, args.Privacy)

	if args.Authors != nil {
		ids, err := e.store.AuthorIDs(ctx, args.Authors)
		if err != nil {
			return nil, fmt.Errorf("posts: %w", err)
		}
		where.Add(querysql.In("messages.author_id", ids))
	}

	order, limit := win.apply(where, ord)

	q := querysql.Select{
		Columns: []string{
			"messages.key_id",
			"keys.key",
			"messages.flume_seq",
			"CAST(messages.asserted_time AS INTEGER)",
		},
		From: "messages",
		Joins: []querysql.Join{
			{Kind: "JOIN", Table: "keys", On: "keys.id = messages.key_id"},
			{Kind: "LEFT JOIN", Table: "mentions", On: "mentions.link_from_key_id = messages.key_id"},
		},
		Where:    where,
		Distinct: true,
		Order:    order,
		Limit:    limit,
	}

	sqlText, params, err := querysql.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("posts: %w", err)
	}

	rows, err := e.collect(ctx, sqlText, params)
	if err != nil {
		return nil, fmt.Errorf("posts: %w", err)
	}

	metrics.SearchesTotal.WithLabelValues("posts").Inc()

	edges := buildEdges(rows, ord)
	return &PostConnection{Edges: edges, PageInfo: buildPageInfo(edges)}, nil
}
