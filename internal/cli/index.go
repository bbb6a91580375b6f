package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/feedql/internal/ingest"
	"github.com/roach88/feedql/internal/offsetlog"
	"github.com/roach88/feedql/internal/store"
)

// IndexOptions holds flags for the index command.
type IndexOptions struct {
	*RootOptions
	OffsetLog string
	PubKey    string
	Resume    bool
}

// IndexResult is the success payload of the index command.
type IndexResult struct {
	Indexed int64 `json:"indexed"`
	Skipped int64 `json:"skipped"`
	Offset  int64 `json:"offset"`
}

// NewIndexCommand creates the index command.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IndexOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Ingest the offset log into the index database",
		Long: `Read the append-only offset log and materialize its records into the
SQLite index. Malformed records are skipped and counted; the run only
stops on storage failures.

Re-running is safe: already-indexed records are no-ops, and --resume
(default) starts from the last indexed log sequence.

Example:
  feedql index --db ./feedql.db --log ~/.ssb/flume/log.offset
  feedql index --log ./log.offset --pub-key @abc...=.ed25519`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.OffsetLog, "log", "", "path to the offset log file")
	cmd.Flags().StringVar(&opts.PubKey, "pub-key", "", "public identifier of the local author")
	cmd.Flags().BoolVar(&opts.Resume, "resume", true, "resume from the last indexed sequence")

	return cmd
}

func runIndex(opts *IndexOptions, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)

	cfg, err := resolveConfig(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.OffsetLog != "" {
		cfg.OffsetLog = opts.OffsetLog
	}
	if opts.PubKey != "" {
		cfg.PubKey = opts.PubKey
	}
	if cfg.OffsetLog == "" {
		return NewExitError(ExitCommandError, "no offset log: set --log, OFFSET_LOG_PATH or offset_log in the config file")
	}

	logger.Info("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	// Setup signal handling for graceful shutdown
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.PubKey != "" {
		if err := st.SetIsMe(ctx, cfg.PubKey); err != nil {
			return WrapExitError(ExitCommandError, "failed to set local author", err)
		}
	}

	reader, err := openLog(ctx, st, cfg.OffsetLog, opts.Resume)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open offset log", err)
	}
	defer reader.Close()

	indexer, err := ingest.NewIndexer(st, nil, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build indexer", err)
	}

	stats, err := indexer.Run(ctx, reader)
	if err != nil && err != context.Canceled {
		return WrapExitError(ExitFailure, "ingestion failed", err)
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	result := IndexResult{Indexed: stats.Indexed, Skipped: stats.Skipped, Offset: reader.Offset()}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	formatter.VerboseLog("offset log drained at byte %d", result.Offset)
	return formatter.Success(formatResultLine(result))
}

// openLog positions the reader. With resume enabled it re-reads from the last
// indexed sequence; re-indexing that one record is an idempotent no-op, which
// keeps the resume point conservative without tracking frame lengths.
func openLog(ctx context.Context, st *store.Store, path string, resume bool) (*offsetlog.Reader, error) {
	if !resume {
		return offsetlog.Open(path)
	}
	seq, ok, err := st.MaxSeq(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return offsetlog.Open(path)
	}
	return offsetlog.OpenAt(path, seq)
}

func formatResultLine(r IndexResult) string {
	if r.Skipped == 0 {
		return fmt.Sprintf("indexed %d record(s)", r.Indexed)
	}
	return fmt.Sprintf("indexed %d record(s), skipped %d malformed", r.Indexed, r.Skipped)
}
