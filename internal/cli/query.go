package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/feedql/internal/query"
	"github.com/roach88/feedql/internal/store"
)

// pageFlags are the shared pagination flags for the search commands.
type pageFlags struct {
	First  int
	Last   int
	Before string
	After  string
}

func addPageFlags(cmd *cobra.Command, p *pageFlags) {
	cmd.Flags().IntVar(&p.First, "first", 0, "page size when paging forward")
	cmd.Flags().IntVar(&p.Last, "last", 0, "page size when paging backward")
	cmd.Flags().StringVar(&p.Before, "before", "", "return items before this cursor")
	cmd.Flags().StringVar(&p.After, "after", "", "return items after this cursor")
}

// pageArgs converts the flags to query arguments. Unset numeric flags stay
// nil so the engine's defaulting rules apply.
func pageArgs(cmd *cobra.Command, p *pageFlags) query.PageArgs {
	var args query.PageArgs
	if cmd.Flags().Changed("first") {
		first := p.First
		args.First = &first
	}
	if cmd.Flags().Changed("last") {
		last := p.Last
		args.Last = &last
	}
	if p.Before != "" {
		before := p.Before
		args.Before = &before
	}
	if p.After != "" {
		after := p.After
		args.After = &after
	}
	return args
}

func parsePrivacy(s string) (query.Privacy, error) {
	switch s {
	case "public":
		return query.PrivacyPublic, nil
	case "private":
		return query.PrivacyPrivate, nil
	case "all":
		return query.PrivacyAll, nil
	default:
		return query.PrivacyPublic, fmt.Errorf("invalid privacy %q: must be public, private or all", s)
	}
}

func parseOrder(s string) (query.OrderBy, error) {
	switch s {
	case "received":
		return query.OrderReceived, nil
	case "asserted":
		return query.OrderAsserted, nil
	default:
		return query.OrderReceived, fmt.Errorf("invalid order %q: must be received or asserted", s)
	}
}

// openEngine opens a read-only handle on the index and wraps it in the query
// engine. Callers own closing the returned store.
func openEngine(opts *RootOptions) (*store.Store, *query.Engine, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	st, err := store.OpenReadOnly(cfg.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, query.NewEngine(st, st, nil), nil
}

// queryError maps engine errors onto formatter output and exit codes.
func queryError(formatter *OutputFormatter, err error) error {
	switch {
	case query.IsInputError(err):
		_ = formatter.Error("input", err.Error())
		return WrapExitError(ExitCommandError, "invalid query", err)
	case query.IsNotImplemented(err):
		_ = formatter.Error("not_implemented", err.Error())
		return WrapExitError(ExitCommandError, "not implemented", err)
	default:
		_ = formatter.Error("storage", err.Error())
		return WrapExitError(ExitFailure, "query failed", err)
	}
}

// renderEdges prints one "cursor<TAB>key" line per edge for text output.
func renderEdges(edges []query.Edge) string {
	if len(edges) == 0 {
		return "(no results)"
	}
	var b strings.Builder
	for i, e := range edges {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s\t%s", e.Cursor, e.Key)
	}
	return b.String()
}
