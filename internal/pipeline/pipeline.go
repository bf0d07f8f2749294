package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/gaid/internal/geo"
	"github.com/roach88/gaid/internal/harmonize"
	"github.com/roach88/gaid/internal/merge"
	"github.com/roach88/gaid/internal/metric"
	"github.com/roach88/gaid/internal/obs"
	"github.com/roach88/gaid/internal/rules"
	"github.com/roach88/gaid/internal/sink"
	"github.com/roach88/gaid/internal/source"
	"github.com/roach88/gaid/internal/validate"
)

// Config selects the inputs and outputs of one compile.
type Config struct {
	// ManifestPath locates the YAML source manifest.
	ManifestPath string

	// RulesPath locates the YAML rule tables. Empty means the shipped
	// defaults.
	RulesPath string

	// OutputCSV is where the published flat file goes. Empty skips the
	// CSV sink.
	OutputCSV string

	// OutputDB is where the SQLite copy goes. Empty skips the store.
	OutputDB string

	// Workers caps concurrent source harmonization. Zero or negative
	// means one worker per CPU.
	Workers int
}

// SourceReport is the per-source slice of the run report.
type SourceReport struct {
	Name  string          `json:"name"`
	File  string          `json:"file"`
	Stats harmonize.Stats `json:"stats"`
}

// Report summarizes one compile end to end.
type Report struct {
	RunID      string           `json:"run_id"`
	Sources    []SourceReport   `json:"sources"`
	Totals     harmonize.Stats  `json:"totals"`
	Merge      merge.Counters   `json:"merge"`
	Validation *validate.Report `json:"validation"`
	Rows       int              `json:"rows"`
}

// Run executes one compile. On validation failure the report is still
// returned together with the *validate.Error so callers can print what
// the gate found; no output is written in that case.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	cfgRules, err := loadRules(cfg.RulesPath)
	if err != nil {
		return nil, err
	}

	manifest, err := source.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return nil, err
	}
	if err := cfgRules.CheckSources(manifest.SourceNames()); err != nil {
		return nil, err
	}

	resolver, err := newResolver(cfgRules)
	if err != nil {
		return nil, err
	}
	h := harmonize.New(resolver, metric.NewCanonicalizer(cfgRules))

	tables, reports, err := harmonizeAll(ctx, h, manifest, cfg.Workers)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Sources: reports,
	}
	for _, sr := range reports {
		report.Totals.Add(sr.Stats)
	}

	merged, err := merge.Merge(tables, cfgRules)
	if err != nil {
		return nil, err
	}
	report.Merge = merged.Counters
	report.Rows = len(merged.Observations)

	report.Validation, err = validate.Validate(merged.Observations, resolver)
	if err != nil {
		return report, err
	}

	if err := publish(ctx, cfg, report, manifest, merged.Observations); err != nil {
		return report, err
	}
	return report, nil
}

func loadRules(path string) (*rules.Config, error) {
	if path == "" {
		return rules.Default(), nil
	}
	return rules.Load(path)
}

func newResolver(cfg *rules.Config) (*geo.Resolver, error) {
	entries, err := geo.ReferenceEntries()
	if err != nil {
		return nil, fmt.Errorf("reference table: %w", err)
	}
	index, err := geo.NewStaticIndex()
	if err != nil {
		return nil, fmt.Errorf("name index: %w", err)
	}
	return geo.NewResolver(entries, cfg.LegacyCodes, index), nil
}

// harmonizeAll reads and harmonizes every declared source, one goroutine
// per source up to the worker cap. Results land in slots indexed by
// manifest position, so the combined order never depends on scheduling.
func harmonizeAll(ctx context.Context, h *harmonize.Harmonizer, m *source.Manifest, workers int) ([][]obs.Observation, []SourceReport, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	tables := make([][]obs.Observation, len(m.Sources))
	reports := make([]SourceReport, len(m.Sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, entry := range m.Sources {
		i, entry := i, entry
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := source.Read(entry.Path, entry.Descriptor)
			if err != nil {
				return fmt.Errorf("source %q: %w", entry.Source, err)
			}
			observations, stats := h.Harmonize(t)
			tables[i] = observations
			reports[i] = SourceReport{Name: entry.Source, File: entry.File, Stats: stats}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tables, reports, nil
}

func publish(ctx context.Context, cfg Config, report *Report, m *source.Manifest, observations []obs.Observation) error {
	if cfg.OutputCSV != "" {
		if err := sink.WriteCSVFile(cfg.OutputCSV, observations); err != nil {
			return fmt.Errorf("csv sink: %w", err)
		}
	}
	if cfg.OutputDB == "" {
		return nil
	}

	store, err := sink.Open(cfg.OutputDB)
	if err != nil {
		return fmt.Errorf("sqlite sink: %w", err)
	}
	defer store.Close()

	run := sink.Run{
		ID:        report.RunID,
		CreatedAt: time.Now(),
		InputRows: report.Totals.Rows,
	}
	for _, e := range m.Sources {
		run.Sources = append(run.Sources, sink.RunSource{
			Name: e.Source,
			File: e.File,
			Type: string(e.Type),
		})
	}
	if err := store.WriteRun(ctx, run, observations); err != nil {
		return fmt.Errorf("sqlite sink: %w", err)
	}
	return nil
}
