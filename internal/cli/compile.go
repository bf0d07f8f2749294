package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gaid/internal/pipeline"
	"github.com/roach88/gaid/internal/rules"
	"github.com/roach88/gaid/internal/validate"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Rules   string // rule tables path (empty = shipped defaults)
	Output  string // published CSV path
	DB      string // SQLite sink path
	Workers int
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <manifest>",
		Short: "Compile declared sources into the canonical table",
		Long: `Compile the sources declared in a manifest into the canonical
long-format table.

Each source is read, harmonized against the country reference and the
metric rule tables, then all sources are merged, reconciled and run
through the validation gate. Nothing is published unless every check
passes.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Rules, "rules", "", "rule tables YAML (default: built-in)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "gaid.csv", "published CSV path")
	cmd.Flags().StringVar(&opts.DB, "db", "", "also publish to a SQLite database at this path")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent source workers (0 = one per CPU)")

	return cmd
}

func runCompile(opts *CompileOptions, manifestPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Compiling %s", manifestPath)

	report, err := pipeline.Run(cmd.Context(), pipeline.Config{
		ManifestPath: manifestPath,
		RulesPath:    opts.Rules,
		OutputCSV:    opts.Output,
		OutputDB:     opts.DB,
		Workers:      opts.Workers,
	})
	if err != nil {
		return outputCompileError(formatter, report, err)
	}

	return outputCompileSuccess(formatter, report, opts.Output)
}

func outputCompileSuccess(formatter *OutputFormatter, report *pipeline.Report, output string) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d source(s): %d rows in, %d rows published\n\n",
		len(report.Sources), report.Totals.Rows, report.Rows)

	fmt.Fprintln(formatter.Writer, "Sources:")
	for _, sr := range report.Sources {
		fmt.Fprintf(formatter.Writer, "  %s: %d row(s), %d kept, %d dropped\n",
			sr.Name, sr.Stats.Rows, sr.Stats.Kept, sr.Stats.Dropped())
	}
	fmt.Fprintln(formatter.Writer)

	m := report.Merge
	if m.CollisionGroups > 0 || m.ExactDuplicatesRemoved > 0 {
		fmt.Fprintln(formatter.Writer, "Reconciliation:")
		fmt.Fprintf(formatter.Writer, "  %d collision group(s): %d identical, %d by precedence, %d disambiguated\n",
			m.CollisionGroups, m.ResolvedIdentical, m.ResolvedByPrecedence, m.Disambiguated)
		fmt.Fprintf(formatter.Writer, "  %d exact duplicate(s) removed\n\n", m.ExactDuplicatesRemoved)
	}

	fmt.Fprintf(formatter.Writer, "Wrote %s (run %s)\n", output, report.RunID)
	return nil
}

// outputCompileError maps pipeline failures onto error codes and exit
// codes. A failed validation gate is a publish failure (exit 1);
// everything else is a command error (exit 2).
func outputCompileError(formatter *OutputFormatter, report *pipeline.Report, err error) error {
	var gateErr *validate.Error
	if errors.As(err, &gateErr) {
		details := interface{}(nil)
		if report != nil {
			details = report.Validation
		}
		_ = formatter.Error(ErrCodeValidation, err.Error(), details)
		return WrapExitError(ExitFailure, "validation gate failed", err)
	}

	code := ErrCodeGeneric
	var cfgErr *rules.ConfigError
	if errors.As(err, &cfgErr) {
		code = ErrCodeRules
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, "compile failed", err)
}
