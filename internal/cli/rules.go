package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/gaid/internal/rules"
)

// NewRulesCommand creates the rules command, which prints the effective
// rule tables. Useful as a starting point for a custom --rules file.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the effective rule tables",
		Long: `Show the rule tables a compile would use: legacy ISO3 rewrites,
mojibake repairs, metric overrides, the acronym dictionary, noise
patterns and source precedence.

With --rules, shows the loaded file after schema validation; without,
shows the built-in defaults.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(rootOpts, rulesPath, cmd)
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "rule tables YAML (default: built-in)")

	return cmd
}

func runRules(opts *RootOptions, rulesPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg := rules.Default()
	if rulesPath != "" {
		loaded, err := rules.Load(rulesPath)
		if err != nil {
			_ = formatter.Error(ErrCodeRules, err.Error(), nil)
			return WrapExitError(ExitCommandError, "rules rejected", err)
		}
		cfg = loaded
	}

	if formatter.Format == "json" {
		return formatter.Success(cfg)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "Legacy ISO3 codes:")
	for _, old := range sortedKeys(cfg.LegacyCodes) {
		fmt.Fprintf(w, "  %s -> %s\n", old, cfg.LegacyCodes[old])
	}

	fmt.Fprintln(w, "\nMojibake repairs:")
	for _, broken := range sortedKeys(cfg.Mojibake) {
		fmt.Fprintf(w, "  %q -> %q\n", broken, cfg.Mojibake[broken])
	}

	fmt.Fprintf(w, "\nMetric overrides (%d):\n", len(cfg.MetricOverrides))
	for _, ov := range cfg.MetricOverrides {
		if ov.SourceFile != "" {
			fmt.Fprintf(w, "  %q -> %q [only %s]\n", ov.Match, ov.Replace, ov.SourceFile)
		} else {
			fmt.Fprintf(w, "  %q -> %q\n", ov.Match, ov.Replace)
		}
	}

	fmt.Fprintf(w, "\nAcronyms: %v\n", cfg.Acronyms)
	fmt.Fprintf(w, "\nNoise junk chars: %q\n", cfg.Noise.JunkChars)
	fmt.Fprintf(w, "Noise placeholder prefixes: %q\n", cfg.Noise.PlaceholderPrefixes)

	if len(cfg.Precedence) > 0 {
		fmt.Fprintln(w, "\nPrecedence:")
		for _, p := range cfg.Precedence {
			fmt.Fprintf(w, "  %q wins for %q\n", p.Winner, p.Metric)
		}
	}

	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
