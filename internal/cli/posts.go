package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/feedql/internal/query"
)

// PostsOptions holds flags for the posts command.
type PostsOptions struct {
	*RootOptions
	Page    pageFlags
	Privacy string
	Order   string

	Query            string
	Authors          []string
	MentionedAuthors []string
}

// NewPostsCommand creates the posts command.
func NewPostsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PostsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Search individual posts",
		Long: `Search individual posts. All filters are intersected: a post matches
only when every given filter matches.

Full-text search needs the text index, which is only built when the
binary is compiled with the sqlite_fts5 build tag.

Example:
  feedql posts --query "orbital mechanics" --first 20
  feedql posts --author @abc...=.ed25519 --privacy private`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPosts(opts, cmd)
		},
	}

	addPageFlags(cmd, &opts.Page)
	cmd.Flags().StringVar(&opts.Privacy, "privacy", "public", "privacy scope (public|private|all)")
	cmd.Flags().StringVar(&opts.Order, "order", "received", "ordering (received|asserted)")
	cmd.Flags().StringVar(&opts.Query, "query", "", "full-text search over post bodies")
	cmd.Flags().StringArrayVar(&opts.Authors, "author", nil, "posts written by this author")
	cmd.Flags().StringArrayVar(&opts.MentionedAuthors, "mentions", nil, "posts that mention this author")

	return cmd
}

func runPosts(opts *PostsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	privacy, err := parsePrivacy(opts.Privacy)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}
	order, err := parseOrder(opts.Order)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	st, engine, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	conn, err := engine.Posts(cmd.Context(), query.PostsArgs{
		Page:            pageArgs(cmd, &opts.Page),
		Privacy:         privacy,
		OrderBy:         order,
		Query:           opts.Query,
		Authors:         opts.Authors,
		MentionsAuthors: opts.MentionedAuthors,
	})
	if err != nil {
		return queryError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(conn)
	}
	return formatter.Success(renderEdges(conn.Edges))
}
