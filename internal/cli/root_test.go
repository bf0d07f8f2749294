package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"compile", "check", "validate", "rules", "stats"})
}

func TestRootCommand_RejectsInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "rules")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommand_AcceptsValidFormats(t *testing.T) {
	for _, format := range ValidFormats {
		_, _, err := execute(t, "--format", format, "rules")
		assert.NoError(t, err, "format %s", format)
	}
}

func TestRootCommand_Help(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "gaid")
	assert.Contains(t, out, "compile")
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}

// silenceUsage asserts every subcommand handles its own error output.
func TestSubcommands_SilenceUsage(t *testing.T) {
	for _, sub := range NewRootCommand().Commands() {
		switch sub.Name() {
		case "compile", "check", "rules", "stats":
			assert.True(t, sub.SilenceUsage, "%s must silence usage", sub.Name())
			assert.True(t, sub.SilenceErrors, "%s must silence errors", sub.Name())
		}
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	_, _, err := execute(t, "replay")
	require.Error(t, err)
}
