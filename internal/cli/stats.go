package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gaid/internal/sink"
)

// NewStatsCommand creates the stats command, which summarizes a
// published SQLite database.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stats <database>",
		Short:         "Summarize a published SQLite database",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runStats(opts *RootOptions, dbPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// sql.Open creates missing files; reject them up front so a typo
	// doesn't leave an empty database behind.
	if _, err := os.Stat(dbPath); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", dbPath), nil)
		return WrapExitError(ExitCommandError, "database not found", err)
	}

	store, err := sink.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeSink, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeSink, err.Error(), nil)
		return WrapExitError(ExitCommandError, "read stats", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(stats)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Rows:      %d\n", stats.Rows)
	fmt.Fprintf(w, "Countries: %d\n", stats.Countries)
	fmt.Fprintf(w, "Metrics:   %d\n", stats.Metrics)
	fmt.Fprintf(w, "Sources:   %d\n", stats.Sources)
	if stats.Rows > 0 {
		fmt.Fprintf(w, "Years:     %d-%d\n", stats.YearMin, stats.YearMax)
	}
	fmt.Fprintf(w, "Runs:      %d\n", stats.Runs)
	if stats.LastRunID != "" {
		fmt.Fprintf(w, "Last run:  %s\n", stats.LastRunID)
	}
	if len(stats.TopMetric) > 0 {
		fmt.Fprintf(w, "Top metrics:\n  %s\n", strings.Join(stats.TopMetric, "\n  "))
	}
	return nil
}
