package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

var iso3Pattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Load reads rule tables from a YAML file, validates them against the
// embedded CUE schema, and runs the semantic checks. Any failure is a
// *ConfigError; the caller must not proceed to row processing on error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newConfigError(ErrCodeLoad, "", "reading %s: %v", path, err)
	}
	return Parse(path, data)
}

// Parse validates and decodes a YAML rule document. Tables the document
// does not name keep their shipped defaults; a named table replaces the
// default table wholesale, so naming an empty table clears it.
func Parse(filename string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema ships inside the binary; failing to compile it is a
		// programmer error, not a configuration error.
		panic(fmt.Sprintf("rules: embedded schema does not compile: %v", err))
	}
	configDef := schema.LookupPath(cue.ParsePath("#Config"))
	if !configDef.Exists() {
		panic("rules: embedded schema has no #Config definition")
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return nil, newConfigError(ErrCodeLoad, "", "parsing YAML: %v", err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return nil, newConfigError(ErrCodeLoad, "", "building document: %v", err)
	}

	unified := configDef.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, newConfigError(ErrCodeSchema, "", "%v", err)
	}

	var overlay Config
	if err := unified.Decode(&overlay); err != nil {
		return nil, newConfigError(ErrCodeSchema, "", "decoding: %v", err)
	}

	cfg := Default()
	named := func(table string) bool {
		return doc.LookupPath(cue.ParsePath(table)).Exists()
	}
	if named("legacy_codes") {
		cfg.LegacyCodes = overlay.LegacyCodes
	}
	if named("mojibake") {
		cfg.Mojibake = overlay.Mojibake
	}
	if named("metric_overrides") {
		cfg.MetricOverrides = overlay.MetricOverrides
	}
	if named("acronyms") {
		cfg.Acronyms = overlay.Acronyms
	}
	if named("noise") {
		cfg.Noise = overlay.Noise
	}
	if named("precedence") {
		cfg.Precedence = overlay.Precedence
	}

	if errs := Check(cfg); len(errs) > 0 {
		return nil, errs[0]
	}
	return cfg, nil
}

// Check runs semantic validation the schema cannot express. It returns
// every violation found, not just the first, so a rule author can fix a
// table in one pass.
func Check(cfg *Config) []*ConfigError {
	var errs []*ConfigError

	for old, repl := range cfg.LegacyCodes {
		if !iso3Pattern.MatchString(old) || !iso3Pattern.MatchString(repl) {
			errs = append(errs, newConfigError(ErrCodeLegacyCode, "legacy_codes."+old,
				"legacy mapping %s -> %s is not a pair of 3-letter codes", old, repl))
			continue
		}
		// A replacement that is itself remapped would make resolution
		// order-dependent.
		if _, ok := cfg.LegacyCodes[repl]; ok {
			errs = append(errs, newConfigError(ErrCodeLegacyCode, "legacy_codes."+old,
				"replacement %s is itself a legacy code", repl))
		}
	}

	seen := make(map[string]int)
	for i, ov := range cfg.MetricOverrides {
		if strings.TrimSpace(ov.Match) == "" || strings.TrimSpace(ov.Replace) == "" {
			errs = append(errs, newConfigError(ErrCodeOverride,
				fmt.Sprintf("metric_overrides[%d]", i), "match and replace must be non-empty"))
			continue
		}
		key := ov.Match + "\x00" + ov.SourceFile
		if j, dup := seen[key]; dup {
			errs = append(errs, newConfigError(ErrCodeDuplicateRule,
				fmt.Sprintf("metric_overrides[%d]", i),
				"duplicates metric_overrides[%d] (match %q)", j, ov.Match))
			continue
		}
		seen[key] = i
	}

	prec := make(map[string]int)
	for i, r := range cfg.Precedence {
		if j, dup := prec[r.Metric]; dup {
			errs = append(errs, newConfigError(ErrCodeDuplicateRule,
				fmt.Sprintf("precedence[%d]", i),
				"metric %q already has a winner from precedence[%d]", r.Metric, j))
			continue
		}
		prec[r.Metric] = i
	}

	return errs
}

// CheckSources verifies every precedence rule names a declared source.
// Called once the source manifest is known; a rule pointing at a source
// that can never contribute rows is a configuration error, not a no-op.
func (c *Config) CheckSources(known []string) error {
	set := make(map[string]struct{}, len(known))
	for _, s := range known {
		set[s] = struct{}{}
	}
	for i, r := range c.Precedence {
		if _, ok := set[r.Winner]; !ok {
			return newConfigError(ErrCodeUnknownWinner,
				fmt.Sprintf("precedence[%d]", i),
				"winner %q is not a declared source", r.Winner)
		}
	}
	return nil
}
