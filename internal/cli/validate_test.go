package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gaid/internal/obs"
	"github.com/roach88/gaid/internal/sink"
)

func writeTable(t *testing.T, observations []obs.Observation) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, sink.WriteCSVFile(path, observations))
	return path
}

func TestValidate_CleanTable(t *testing.T) {
	path := writeTable(t, []obs.Observation{
		{
			Year: 2021, Country: "France", ISO3: "FRA",
			Metric: "AI Talent Index", Value: 2.5,
			Provenance: obs.Provenance{
				Source: "Tortoise", Dataset: "Global AI Index", Category: "Talent",
				SourceFile: "tortoise.csv", SourceType: obs.SourceCSV, SourceYear: "2021",
			},
		},
		{
			Year: 2021, Country: "Germany", ISO3: "DEU",
			Metric: "AI Talent Index", Value: 3.1,
			Provenance: obs.Provenance{
				Source: "OECD", SourceFile: "oecd.csv",
				SourceType: obs.SourceCSV, SourceYear: "2022",
			},
		},
	})

	stdout, _, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ 2 row(s), all checks passed")
}

func TestValidate_FailingTable(t *testing.T) {
	// One unknown code and one duplicated logical key.
	path := writeTable(t, []obs.Observation{
		{Year: 2021, Country: "Atlantis", ISO3: "XXX", Metric: "AI Talent Index", Value: 1},
		{Year: 2021, Country: "France", ISO3: "FRA", Metric: "AI Talent Index", Value: 2.5},
		{Year: 2021, Country: "France", ISO3: "FRA", Metric: "AI Talent Index", Value: 2.6},
	})

	stdout, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, stdout, "Error [E101]")
	assert.Contains(t, stdout, "iso3_coverage: 1")
	assert.Contains(t, stdout, "XXX")
	assert.Contains(t, stdout, "key_collisions: 1")
	assert.Contains(t, stdout, "(2021, FRA, AI Talent Index) x2")
	assert.NotContains(t, stdout, "country_mapping")
}

func TestValidate_FailingTableJSON(t *testing.T) {
	path := writeTable(t, []obs.Observation{
		{Year: 0, Country: "France", ISO3: "FRA", Metric: "AI Talent Index", Value: 2.5},
	})

	stdout, _, err := execute(t, "--format", "json", "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.NotNil(t, resp.Error.Details)
}

func TestValidate_MissingTable(t *testing.T) {
	stdout, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E006]")
}

func TestValidate_MalformedTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte("Year,Country\n2021,France\n"), 0o644))

	stdout, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E006]")
	assert.Contains(t, stdout, "want 11")
}
