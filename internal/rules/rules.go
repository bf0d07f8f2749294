package rules

// Override rewrites one exact metric label to another. Overrides handle
// the renames that need semantic judgment (focus-area codes expanding to
// descriptive phrases, source-specific column labels) and therefore can
// never be derived by normalization alone. When SourceFile is set the
// override applies only to rows from that file.
type Override struct {
	Match      string `json:"match" yaml:"match"`
	SourceFile string `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	Replace    string `json:"replace" yaml:"replace"`
}

// PrecedenceRule declares which source wins when two sources assert
// conflicting values for the same (year, iso3, metric).
type PrecedenceRule struct {
	Metric string `json:"metric" yaml:"metric"`
	Winner string `json:"winner" yaml:"winner"`
}

// Noise is the vocabulary of non-substantive metric labels. Rows whose
// metric matches are excluded from the canonical table entirely.
type Noise struct {
	JunkChars           []string `json:"junk_chars" yaml:"junk_chars"`
	PlaceholderPrefixes []string `json:"placeholder_prefixes" yaml:"placeholder_prefixes"`
}

// Config bundles the five swappable rule tables.
type Config struct {
	// LegacyCodes maps superseded ISO3 codes to their replacements,
	// applied before any lookup.
	LegacyCodes map[string]string `json:"legacy_codes" yaml:"legacy_codes"`

	// Mojibake maps known mis-encoded byte sequences to the characters
	// they were meant to be. Applied first in the normalization pipeline.
	Mojibake map[string]string `json:"mojibake" yaml:"mojibake"`

	// MetricOverrides apply after normalization, before case-fold merging,
	// in table order; the first matching override wins.
	MetricOverrides []Override `json:"metric_overrides" yaml:"metric_overrides"`

	// Acronyms lists canonical spellings forced after title-casing,
	// matched case-insensitively per token ("Ai" -> "AI").
	Acronyms []string `json:"acronyms" yaml:"acronyms"`

	Noise Noise `json:"noise" yaml:"noise"`

	Precedence []PrecedenceRule `json:"precedence" yaml:"precedence"`
}

// Winner returns the authoritative source for a metric, if one is declared.
func (c *Config) Winner(metric string) (string, bool) {
	for _, r := range c.Precedence {
		if r.Metric == metric {
			return r.Winner, true
		}
	}
	return "", false
}

// Default returns the shipped rule tables. These mirror the constants the
// hand-curated compilation runs accumulated: superseded ISO3 codes, the
// mojibake repairs, the acronym dictionary, and the placeholder patterns
// that mark scratch columns leaked from upstream spreadsheets.
func Default() *Config {
	return &Config{
		LegacyCodes: map[string]string{
			"ROM": "ROU", // Romania
			"ZAR": "COD", // Democratic Republic of the Congo
			"ADO": "AND", // Andorra
			"TMP": "TLS", // Timor-Leste
			"WBG": "PSE", // Palestine
		},
		Mojibake: map[string]string{
			"Â€\"": "-",
			"€\"":  "-",
			"â€\"": "-",
			"聙聯":   "-",
			"鈥橲":   "'s",
			"Ð":    "-",
		},
		MetricOverrides: []Override{
			// Focus-area investment codes arrive as bare sector names.
			{Match: "Agritech", Replace: "Private Investment In AI Focus Area: Agritech (In Billions Of US Dollars)"},
			{Match: "AV", Replace: "Private Investment In AI Focus Area: AV (In Billions Of US Dollars)"},
			{Match: "Drones", Replace: "Private Investment In AI Focus Area: Drones (In Billions Of US Dollars)"},
			{Match: "Ed Tech", Replace: "Private Investment In AI Focus Area: Ed Tech (In Billions Of US Dollars)"},
			{Match: "Entertainment", Replace: "Private Investment In AI Focus Area: Entertainment (In Billions Of US Dollars)"},
			{Match: "Fintech", Replace: "Private Investment In AI Focus Area: Fintech (In Billions Of US Dollars)"},
			{Match: "Geospatial", Replace: "Private Investment In AI Focus Area: Geospatial (In Billions Of US Dollars)"},
			{Match: "HR Tech", Replace: "Private Investment In AI Focus Area: HR Tech (In Billions Of US Dollars)"},
			{Match: "Insurtech", Replace: "Private Investment In AI Focus Area: Insurtech (In Billions Of US Dollars)"},
			{Match: "Legal Tech", Replace: "Private Investment In AI Focus Area: Legal Tech (In Billions Of US Dollars)"},
			{Match: "Retail", Replace: "Private Investment In AI Focus Area: Retail (In Billions Of US Dollars)"},
			{Match: "Semiconductor", Replace: "Private Investment In AI Focus Area: Semiconductor (In Billions Of US Dollars)"},
			// Gender splits from the diversity workbook carry no context of their own.
			{
				Match:      "Female",
				SourceFile: "9. Diversity-2021_LinkedIn_LinkedIn - 2021 AI Index Report (Diversity in AI).xlsx",
				Replace:    "Relative AI Skill Penetration Rate (Female)",
			},
			{
				Match:      "Male",
				SourceFile: "9. Diversity-2021_LinkedIn_LinkedIn - 2021 AI Index Report (Diversity in AI).xlsx",
				Replace:    "Relative AI Skill Penetration Rate (Male)",
			},
		},
		Acronyms: []string{
			"AI", "NLP", "VC", "AV", "HR", "ICT", "IT", "CS", "CE",
			"PhD", "US", "UK", "EU", "VAT", "GDP", "AR/VR", "LinkedIn",
		},
		Noise: Noise{
			JunkChars:           []string{"鈥", "魯", "鈫", "脨", "鈼"},
			PlaceholderPrefixes: []string{"Unnamed:", "Value_original_", "Metric_original_"},
		},
		Precedence: nil,
	}
}
