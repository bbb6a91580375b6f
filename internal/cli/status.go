package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// StatusResult is the success payload of the status command.
type StatusResult struct {
	Cursor        *string `json:"cursor"`
	CurrentAuthor *string `json:"current_author"`
	TextSearch    bool    `json:"text_search"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index progress and identity",
		Long: `Show how far ingestion has progressed (as an opaque cursor), which
author is marked as the local identity, and whether full-text search
is available.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
	return cmd
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	st, engine, err := openEngine(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	cursor, err := engine.DbCursor(cmd.Context())
	if err != nil {
		return queryError(formatter, err)
	}

	author, err := engine.CurrentAuthor(cmd.Context())
	if err != nil {
		return queryError(formatter, err)
	}

	result := StatusResult{Cursor: cursor, TextSearch: st.TextSearchAvailable()}
	if author != nil {
		result.CurrentAuthor = &author.Ref
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "cursor:         %s\n", orNone(result.Cursor))
	fmt.Fprintf(&b, "current author: %s\n", orNone(result.CurrentAuthor))
	fmt.Fprintf(&b, "text search:    %v", result.TextSearch)
	return formatter.Success(b.String())
}

func orNone(s *string) string {
	if s == nil {
		return "(none)"
	}
	return *s
}
