package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/gaid/internal/rules"
	"github.com/roach88/gaid/internal/source"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Rules string
}

// CheckResult holds what the check command verified.
type CheckResult struct {
	Manifest string   `json:"manifest"`
	Sources  []string `json:"sources"`
	Rules    string   `json:"rules"` // path or "built-in"
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <manifest>",
		Short: "Check rules and manifest without compiling",
		Long: `Check the rule tables and the source manifest without reading any
source data.

Verifies the rules parse and pass every semantic check, the manifest
declares readable files, and every precedence winner names a declared
source. Faster than a full compile for rule authoring feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Rules, "rules", "", "rule tables YAML (default: built-in)")

	return cmd
}

func runCheck(opts *CheckOptions, manifestPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result := &CheckResult{Manifest: manifestPath, Rules: "built-in"}
	if opts.Rules != "" {
		result.Rules = opts.Rules
	}

	cfg := rules.Default()
	if opts.Rules != "" {
		loaded, err := rules.Load(opts.Rules)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else {
			cfg = loaded
		}
	}

	manifest, err := source.LoadManifest(manifestPath)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else {
		result.Sources = manifest.SourceNames()
		for _, e := range manifest.Sources {
			if _, err := os.Stat(e.Path); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("source %q: file %s not readable: %v", e.Source, e.Path, err))
			}
		}
		if err := cfg.CheckSources(manifest.SourceNames()); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	result.Valid = len(result.Errors) == 0
	return outputCheckResult(formatter, result)
}

func outputCheckResult(formatter *OutputFormatter, result *CheckResult) error {
	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
		if !result.Valid {
			return NewExitError(ExitCommandError, fmt.Sprintf("check failed with %d error(s)", len(result.Errors)))
		}
		return nil
	}

	if result.Valid {
		fmt.Fprintf(formatter.Writer, "✓ %d source(s) declared, rules %s\n", len(result.Sources), result.Rules)
		return nil
	}

	fmt.Fprintln(formatter.Writer, "✗ Check failed")
	fmt.Fprintln(formatter.Writer)
	for _, msg := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s\n", msg)
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("check failed with %d error(s)", len(result.Errors)))
}
