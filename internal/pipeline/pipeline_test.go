package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gaid/internal/sink"
	"github.com/roach88/gaid/internal/validate"
)

func TestRun_Golden(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gaid.csv")

	report, err := Run(context.Background(), Config{
		ManifestPath: filepath.Join("testdata", "manifest.yaml"),
		OutputCSV:    out,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "compile", data)

	// Per-source accounting: Tortoise has one aggregate row ("Global")
	// that must not resolve.
	require.Len(t, report.Sources, 2)
	assert.Equal(t, "Tortoise", report.Sources[0].Name)
	assert.Equal(t, 4, report.Sources[0].Stats.Rows)
	assert.Equal(t, 3, report.Sources[0].Stats.Kept)
	assert.Equal(t, 1, report.Sources[0].Stats.UnresolvedCountry)
	assert.Equal(t, 2, report.Sources[1].Stats.Kept)

	assert.Equal(t, 6, report.Totals.Rows)
	assert.Equal(t, 5, report.Totals.Kept)

	// The France 2021 value is asserted identically by both sources.
	assert.Equal(t, 5, report.Merge.Input)
	assert.Equal(t, 1, report.Merge.CollisionGroups)
	assert.Equal(t, 1, report.Merge.ResolvedIdentical)
	assert.Equal(t, 4, report.Rows)

	require.NotNil(t, report.Validation)
	assert.True(t, report.Validation.Clean())
	assert.NotEmpty(t, report.RunID)
}

func TestRun_ByteIdenticalAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	read := func(name string, workers int) []byte {
		out := filepath.Join(dir, name)
		_, err := Run(context.Background(), Config{
			ManifestPath: filepath.Join("testdata", "manifest.yaml"),
			OutputCSV:    out,
			Workers:      workers,
		})
		require.NoError(t, err)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return data
	}

	first := read("a.csv", 1)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, read("b.csv", 4), "run %d diverged", i)
	}
}

func TestRun_SQLiteSink(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "gaid.db")

	report, err := Run(context.Background(), Config{
		ManifestPath: filepath.Join("testdata", "manifest.yaml"),
		OutputCSV:    filepath.Join(dir, "gaid.csv"),
		OutputDB:     db,
	})
	require.NoError(t, err)

	store, err := sink.Open(db)
	require.NoError(t, err)
	defer store.Close()

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.Rows, stats.Rows)
	assert.Equal(t, 1, stats.Runs)
	assert.Equal(t, report.RunID, stats.LastRunID)
}

func TestRun_PartialRulesKeepDefaultTables(t *testing.T) {
	// A precedence-only rules file must not disable the shipped legacy
	// ISO3 map: the Tortoise fixture's ROM row still lands as ROU.
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte(
		"precedence:\n  - metric: \"AI Talent Index\"\n    winner: \"Tortoise\"\n",
	), 0o644))

	out := filepath.Join(dir, "gaid.csv")
	report, err := Run(context.Background(), Config{
		ManifestPath: filepath.Join("testdata", "manifest.yaml"),
		RulesPath:    rulesPath,
		OutputCSV:    out,
	})
	require.NoError(t, err)

	// Only the "Global" aggregate drops; ROM is rewritten, not dropped.
	assert.Equal(t, 1, report.Sources[0].Stats.UnresolvedCountry)
	assert.Equal(t, 3, report.Sources[0].Stats.Kept)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Romania,ROU")
	assert.NotContains(t, string(data), "ROM,")
}

func TestRun_ValidationFailureBlocksPublish(t *testing.T) {
	dir := t.TempDir()

	// Year 0 survives coercion but violates the null floor, so the
	// gate must block the publish.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.csv"), []byte(
		"Year,Country,ISO3,Metric,Value\n0,France,FRA,AI talent index,1\n",
	), 0o644))
	manifest := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(
		"sources:\n  - path: bad.csv\n    source: Tortoise\n    type: csv\n",
	), 0o644))

	out := filepath.Join(dir, "gaid.csv")
	report, err := Run(context.Background(), Config{
		ManifestPath: manifest,
		OutputCSV:    out,
	})
	require.Error(t, err)

	var gateErr *validate.Error
	require.ErrorAs(t, err, &gateErr)
	require.NotNil(t, report, "report must accompany a gate failure")
	assert.Same(t, report.Validation, gateErr.Report)
	assert.False(t, report.Validation.Clean())

	// Publish blocked: no output written.
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_MissingManifest(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gaid.csv")
	_, err := Run(context.Background(), Config{
		ManifestPath: filepath.Join("testdata", "absent.yaml"),
		OutputCSV:    out,
	})
	require.Error(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_UnknownPrecedenceWinnerRejectedUpFront(t *testing.T) {
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte(
		"precedence:\n  - metric: \"AI Talent Index\"\n    winner: \"Stanford\"\n",
	), 0o644))

	_, err := Run(context.Background(), Config{
		ManifestPath: filepath.Join("testdata", "manifest.yaml"),
		RulesPath:    rulesPath,
		OutputCSV:    filepath.Join(dir, "gaid.csv"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Stanford")
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{
		ManifestPath: filepath.Join("testdata", "manifest.yaml"),
		OutputCSV:    filepath.Join(t.TempDir(), "gaid.csv"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
