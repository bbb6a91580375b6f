package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/feedql/internal/query"
)

// ThreadsOptions holds flags for the threads command.
type ThreadsOptions struct {
	*RootOptions
	Page    pageFlags
	Privacy string
	Order   string

	RootAuthors       []string
	RootsFollowedBy   []string
	ReplyAuthors      []string
	RepliesFollowedBy []string
	MentionedAuthors  []string
}

// NewThreadsCommand creates the threads command.
func NewThreadsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ThreadsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Search conversation threads",
		Long: `Search conversation threads by who participates in them.

Selector flags are unioned: a thread matches when ANY selector matches.
Privacy and pagination then narrow the union. Repeat a flag to pass
multiple authors.

Example:
  feedql threads --root-author @abc...=.ed25519 --first 20
  feedql threads --mentions @abc...=.ed25519 --order asserted --last 5`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThreads(opts, cmd)
		},
	}

	addPageFlags(cmd, &opts.Page)
	cmd.Flags().StringVar(&opts.Privacy, "privacy", "public", "privacy scope (public|private|all)")
	cmd.Flags().StringVar(&opts.Order, "order", "received", "ordering (received|asserted)")
	cmd.Flags().StringArrayVar(&opts.RootAuthors, "root-author", nil, "threads whose root was written by this author")
	cmd.Flags().StringArrayVar(&opts.RootsFollowedBy, "roots-followed-by", nil, "threads whose root was written by someone this author follows")
	cmd.Flags().StringArrayVar(&opts.ReplyAuthors, "reply-author", nil, "threads with a reply by this author")
	cmd.Flags().StringArrayVar(&opts.RepliesFollowedBy, "replies-followed-by", nil, "threads with a reply by someone this author follows")
	cmd.Flags().StringArrayVar(&opts.MentionedAuthors, "mentions", nil, "threads that mention this author or carry their replies")

	return cmd
}

func runThreads(opts *ThreadsOptions, cmd *cobra.Command) error {
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

	conn, err := engine.Threads(cmd.Context(), query.ThreadsArgs{
		Page:                                  pageArgs(cmd, &opts.Page),
		Privacy:                               privacy,
		OrderBy:                               order,
		RootsAuthoredBy:                       opts.RootAuthors,
		RootsAuthoredBySomeoneFollowedBy:      opts.RootsFollowedBy,
		HasRepliesAuthoredBy:                  opts.ReplyAuthors,
		HasRepliesAuthoredBySomeoneFollowedBy: opts.RepliesFollowedBy,
		MentionsAuthors:                       opts.MentionedAuthors,
	})
	if err != nil {
		return queryError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(conn)
	}
	return formatter.Success(renderEdges(conn.Edges))
}
