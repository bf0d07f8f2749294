package source

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestEntry names one raw file and its descriptor.
type ManifestEntry struct {
	Path       string `yaml:"path"`
	Descriptor `yaml:",inline"`
}

// Manifest declares the raw tables feeding one compilation run.
type Manifest struct {
	Sources []ManifestEntry `yaml:"sources"`
}

// LoadManifest reads and validates a source manifest. Relative paths
// resolve against the manifest's own directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	if len(m.Sources) == 0 {
		return nil, fmt.Errorf("manifest %s: no sources declared", path)
	}

	base := filepath.Dir(path)
	for i := range m.Sources {
		e := &m.Sources[i]
		if e.Path == "" {
			return nil, fmt.Errorf("manifest %s: sources[%d]: path is required", path, i)
		}
		if e.Source == "" {
			return nil, fmt.Errorf("manifest %s: sources[%d]: source is required", path, i)
		}
		if !e.Type.Valid() {
			return nil, fmt.Errorf("manifest %s: sources[%d]: type must be csv or xlsx, got %q", path, i, e.Type)
		}
		if !filepath.IsAbs(e.Path) {
			e.Path = filepath.Join(base, e.Path)
		}
		if e.File == "" {
			e.File = filepath.Base(e.Path)
		}
	}
	return &m, nil
}

// SourceNames returns the declared source labels, in manifest order.
func (m *Manifest) SourceNames() []string {
	names := make([]string, len(m.Sources))
	for i, e := range m.Sources {
		names[i] = e.Source
	}
	return names
}
