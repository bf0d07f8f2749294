package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaid.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaid.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaid.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func testRun(id string) Run {
	return Run{
		ID:        id,
		CreatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Sources: []RunSource{
			{Name: "Tortoise", File: "tortoise.csv", Type: "csv"},
			{Name: "World Bank", File: "wdi.csv", Type: "csv"},
		},
		InputRows: 10,
	}
}

func TestWriteRun_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "gaid.db"))
	require.NoError(t, err)
	defer s.Close()

	table := sampleTable()
	require.NoError(t, s.WriteRun(ctx, testRun("run-1"), table))

	got, err := s.ReadObservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, table, got)
}

func TestWriteRun_SourceWithSeveralFiles(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "gaid.db"))
	require.NoError(t, err)
	defer s.Close()

	// One source contributing several workbooks is the normal shape of
	// a multi-year compile.
	run := Run{
		ID:        "run-multi",
		CreatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Sources: []RunSource{
			{Name: "LinkedIn", File: "linkedin-2020.xlsx", Type: "xlsx"},
			{Name: "LinkedIn", File: "linkedin-2021.xlsx", Type: "xlsx"},
		},
		InputRows: 10,
	}
	require.NoError(t, s.WriteRun(ctx, run, sampleTable()))

	var n int
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*) FROM run_sources WHERE run_id = ? AND name = ?`,
		"run-multi", "LinkedIn",
	).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestWriteRun_RerunUpsertsInPlace(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "gaid.db"))
	require.NoError(t, err)
	defer s.Close()

	table := sampleTable()
	require.NoError(t, s.WriteRun(ctx, testRun("run-1"), table))
	require.NoError(t, s.WriteRun(ctx, testRun("run-2"), table))

	// Same content hashed to the same row IDs: no duplication.
	got, err := s.ReadObservations(ctx)
	require.NoError(t, err)
	assert.Len(t, got, len(table))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Runs)
	assert.Equal(t, len(table), stats.Rows)
}

func TestWriteRun_ChangedValueReplacesLogicalRow(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "gaid.db"))
	require.NoError(t, err)
	defer s.Close()

	table := sampleTable()
	require.NoError(t, s.WriteRun(ctx, testRun("run-1"), table))

	revised := sampleTable()
	revised[1].Value = 2.7
	require.NoError(t, s.WriteRun(ctx, testRun("run-2"), revised))

	got, err := s.ReadObservations(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(table))
	assert.Equal(t, 2.7, got[1].Value)
}

func TestWriteRun_DuplicateRunIDRejected(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "gaid.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteRun(ctx, testRun("run-1"), nil))
	assert.Error(t, s.WriteRun(ctx, testRun("run-1"), nil))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "gaid.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteRun(ctx, testRun("run-1"), sampleTable()))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, 2, stats.Countries)
	assert.Equal(t, 2, stats.Metrics)
	assert.Equal(t, 2, stats.Sources)
	assert.Equal(t, 2020, stats.YearMin)
	assert.Equal(t, 2021, stats.YearMax)
	assert.Equal(t, "run-1", stats.LastRunID)
	assert.ElementsMatch(t, []string{"AI Talent Index", "GDP Per Capita"}, stats.TopMetric)
}

func TestStats_EmptyDatabase(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "gaid.db"))
	require.NoError(t, err)
	defer s.Close()

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Rows)
	assert.Zero(t, stats.Runs)
	assert.Empty(t, stats.LastRunID)
}
