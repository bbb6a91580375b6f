package query

import (
	"context"
	"fmt"

	"github.com/roach88/feedql/internal/metrics"
	"github.com/roach88/feedql/internal/querysql"
)

// ThreadsArgs are the thread-search inputs. Every selector is optional; nil
// means "not supplied" and contributes nothing. Supplied selectors are
// OR-combined: a thread is included if it matches ANY of them. With zero
// selectors supplied, all threads pass the selector stage.
type ThreadsArgs struct {
	Page    PageArgs
	Privacy Privacy
	OrderBy OrderBy

	// RootsAuthoredBy includes threads whose root is authored by one of
	// the given authors.
	RootsAuthoredBy []string
	// RootsAuthoredBySomeoneFollowedBy includes threads whose root is
	// authored by someone one of the given authors actively follows.
	RootsAuthoredBySomeoneFollowedBy []string
	// HasRepliesAuthoredBy includes threads with a reply by one of the
	// given authors.
	HasRepliesAuthoredBy []string
	// HasRepliesAuthoredBySomeoneFollowedBy includes threads with a reply
	// by someone one of the given authors actively follows.
	HasRepliesAuthoredBySomeoneFollowedBy []string
	// MentionsAuthors includes threads that mention the given authors.
	MentionsAuthors []string
}

// Threads searches for threads matching any of the supplied selectors,
// restricted to one row per thread root, with privacy and ordering applied
// as a trailing AND over the OR-union.
func (e *Engine) Threads(ctx context.Context, args ThreadsArgs) (*ThreadConnection, error) {
	win, err := resolveWindow(args.Page)
	if err != nil {
		return nil, err
	}
	ord := threadOrdering(args.OrderBy)

	selectors := &querysql.Group{Op: querysql.OpOr}

	if args.MentionsAuthors != nil {
		ids, err := e.store.AuthorIDs(ctx, args.MentionsAuthors)
		if err != nil {
			return nil, fmt.Errorf("threads: %w", err)
		}
		selectors.Add(querysql.In("mentions.link_to_author_id", ids))
		selectors.Add(repliesBy(ids))
	}

	if args.RootsAuthoredBy != nil {
		ids, err := e.store.AuthorIDs(ctx, args.RootsAuthoredBy)
		if err != nil {
			return nil, fmt.Errorf("threads: %w", err)
		}
		selectors.Add(querysql.In("root_posts.author_id", ids))
	}

	if args.RootsAuthoredBySomeoneFollowedBy != nil {
		ids, err := e.store.FollowedAuthorIDs(ctx, args.RootsAuthoredBySomeoneFollowedBy)
		if err != nil {
			return nil, fmt.Errorf("threads: %w", err)
		}
		selectors.Add(querysql.In("root_posts.author_id", ids))
	}

	if args.HasRepliesAuthoredBySomeoneFollowedBy != nil {
		ids, err := e.store.FollowedAuthorIDs(ctx, args.HasRepliesAuthoredBySomeoneFollowedBy)
		if err != nil {
			return nil, fmt.Errorf("threads: %w", err)
		}
		selectors.Add(repliesBy(ids))
	}

	if args.HasRepliesAuthoredBy != nil {
		ids, err := e.store.AuthorIDs(ctx, args.HasRepliesAuthoredBy)
		if err != nil {
			return nil, fmt.Errorf("threads: %w", err)
		}
		selectors.Add(repliesBy(ids))
	}

	trailing := &querysql.Group{Op: querysql.OpAnd}
	addPrivacy(trailing, args.Privacy)
	order, limit := win.apply(trailing, ord)

	q := querysql.Select{
		Columns: []string{
			"root_posts.key_id",
			"keys.key",
			"root_posts.flume_seq",
			"root_posts.asserted_timestamp",
		},
		From: "root_posts",
		Joins: []querysql.Join{
			{Kind: "JOIN", Table: "keys", On: "keys.id = root_posts.key_id"},
			{Kind: "JOIN", Table: "messages", On: "root_posts.key_id = messages.key_id"},
			{Kind: "LEFT JOIN", Table: "mentions", On: "mentions.link_from_key_id = messages.key_id"},
		},
		Where:    &querysql.Group{Op: querysql.OpAnd, Groups: []*querysql.Group{selectors, trailing}},
		Distinct: true,
		Order:    order,
		Limit:    limit,
	}

	sqlText, params, err := querysql.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("threads: %w", err)
	}

	rows, err := e.collect(ctx, sqlText, params)
	if err != nil {
		return nil, fmt.Errorf("threads: %w", err)
	}

	metrics.SearchesTotal.WithLabelValues("threads").Inc()

	edges := buildEdges(rows, ord)
	return &ThreadConnection{Edges: edges, PageInfo: buildPageInfo(edges)}, nil
}

// repliesBy selects thread roots that have a reply authored by one of the
// given author ids.
func repliesBy(authorIDs []int64) querysql.Predicate {
	in := querysql.In("author_id", authorIDs)
	return querysql.InSubquery(
		"root_posts.key_id",
		"SELECT root_post_id FROM reply_posts WHERE "+in.SQL,
		in.Args...,
	)
}

// addPrivacy appends the decryption-state filter; PrivacyAll adds nothing.
func addPrivacy(g *querysql.Group, p Privacy) {
	switch p {
	case PrivacyPrivate:
		g.Add(querysql.Cmp("messages.is_decrypted", "=", 1))
	case PrivacyPublic:
		g.Add(querysql.Cmp("messages.is_decrypted", "=", 0))
	}
}
