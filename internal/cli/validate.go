package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gaid/internal/geo"
	"github.com/roach88/gaid/internal/sink"
	"github.com/roach88/gaid/internal/validate"
)

// NewValidateCommand creates the validate command, which runs the
// publication gate over a table that already exists on disk.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <table.csv>",
		Short: "Run the validation gate over a published table",
		Long: `Run the validation gate over an already-published CSV table.

Applies the same four checks a compile applies before publishing:
ISO3 coverage, required fields, key uniqueness and one-to-one
country/code mapping. Useful after hand edits or for tables produced
by older compiler versions.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, tablePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	observations, err := sink.ReadCSVFile(tablePath)
	if err != nil {
		_ = formatter.Error(ErrCodeSink, err.Error(), nil)
		return WrapExitError(ExitCommandError, "table unreadable", err)
	}

	entries, err := geo.ReferenceEntries()
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reference table", err)
	}
	codes := geo.NewResolver(entries, nil, nil)

	report, err := validate.Validate(observations, codes)
	if err != nil {
		var gateErr *validate.Error
		if errors.As(err, &gateErr) {
			_ = formatter.Error(ErrCodeValidation, err.Error(), report)
			if formatter.Format != "json" {
				printFindings(formatter, report)
			}
			return WrapExitError(ExitFailure, "validation gate failed", err)
		}
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "validate failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	fmt.Fprintf(formatter.Writer, "✓ %d row(s), all checks passed\n", report.Rows)
	return nil
}

func printFindings(formatter *OutputFormatter, report *validate.Report) {
	fmt.Fprintf(formatter.Writer, "✗ Validation failed over %d row(s)\n\n", report.Rows)
	for _, f := range report.Findings {
		if f.Count == 0 {
			continue
		}
		fmt.Fprintf(formatter.Writer, "  %s: %d\n", f.Check, f.Count)
		for _, ex := range f.Examples {
			fmt.Fprintf(formatter.Writer, "    %s\n", ex)
		}
	}
}
