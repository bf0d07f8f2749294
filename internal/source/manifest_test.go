package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
sources:
  - path: raw/tortoise.csv
    source: Tortoise
    dataset: Global AI Index
    category: Talent
    type: csv
    year: "2021"
  - path: /abs/linkedin.xlsx
    source: LinkedIn
    type: xlsx
    file: renamed.xlsx
`)

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Sources, 2)

	// Relative paths resolve against the manifest directory.
	assert.Equal(t, filepath.Join(dir, "raw/tortoise.csv"), m.Sources[0].Path)
	// Absolute paths pass through.
	assert.Equal(t, "/abs/linkedin.xlsx", m.Sources[1].Path)

	// File defaults to the path base, but an explicit value sticks.
	assert.Equal(t, "tortoise.csv", m.Sources[0].File)
	assert.Equal(t, "renamed.xlsx", m.Sources[1].File)

	assert.Equal(t, []string{"Tortoise", "LinkedIn"}, m.SourceNames())
}

func TestLoadManifest_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIn  string
	}{
		{
			name:    "no sources",
			content: "sources: []\n",
			wantIn:  "no sources",
		},
		{
			name:    "missing path",
			content: "sources:\n  - source: X\n    type: csv\n",
			wantIn:  "path is required",
		},
		{
			name:    "missing source",
			content: "sources:\n  - path: a.csv\n    type: csv\n",
			wantIn:  "source is required",
		},
		{
			name:    "bad type",
			content: "sources:\n  - path: a.csv\n    source: X\n    type: parquet\n",
			wantIn:  "type must be csv or xlsx",
		},
		{
			name:    "not yaml",
			content: "sources: [unterminated",
			wantIn:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.content)
			_, err := LoadManifest(path)
			require.Error(t, err)
			if tt.wantIn != "" {
				assert.Contains(t, err.Error(), tt.wantIn)
			}
		})
	}
}

func TestLoadManifest_MissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
