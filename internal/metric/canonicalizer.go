package metric

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/gaid/internal/rules"
)

// replacement is one ordered mojibake repair.
type replacement struct {
	from, to string
}

// Canonicalizer normalizes metric label text. Immutable after
// construction; safe for concurrent use.
type Canonicalizer struct {
	mojibake     []replacement
	acronyms     map[string]string // lower token -> forced spelling
	junk         []string
	placeholders []string
	overrides    []rules.Override
	title        cases.Caser
}

// NewCanonicalizer builds a canonicalizer from the rule tables.
func NewCanonicalizer(cfg *rules.Config) *Canonicalizer {
	// Mojibake repairs must apply in a fixed order: longest sequence
	// first, so a repair never leaves behind the tail of a longer one
	// ("Â€\"" before "€\""). Ties break lexicographically.
	moji := make([]replacement, 0, len(cfg.Mojibake))
	for from, to := range cfg.Mojibake {
		moji = append(moji, replacement{from: from, to: to})
	}
	sort.Slice(moji, func(i, j int) bool {
		if len(moji[i].from) != len(moji[j].from) {
			return len(moji[i].from) > len(moji[j].from)
		}
		return moji[i].from < moji[j].from
	})

	acr := make(map[string]string, len(cfg.Acronyms))
	for _, a := range cfg.Acronyms {
		acr[strings.ToLower(a)] = a
	}

	return &Canonicalizer{
		mojibake:     moji,
		acronyms:     acr,
		junk:         append([]string(nil), cfg.Noise.JunkChars...),
		placeholders: append([]string(nil), cfg.Noise.PlaceholderPrefixes...),
		overrides:    append([]rules.Override(nil), cfg.MetricOverrides...),
		title:        cases.Title(language.English),
	}
}

// NormalizeText applies the canonical text transform. Idempotent:
// NormalizeText(NormalizeText(x)) == NormalizeText(x).
func (c *Canonicalizer) NormalizeText(label string) string {
	s := norm.NFC.String(label)

	// (a) mojibake repair, fixed order
	for _, r := range c.mojibake {
		s = strings.ReplaceAll(s, r.from, r.to)
	}

	// (b) dash/quote/apostrophe unification to ASCII
	s = strings.NewReplacer(
		"–", "-", // en dash
		"—", "-", // em dash
		"‘", "'", // left single quote
		"’", "'", // right single quote
		"‚", "'", // low single quote
		"‛", "'", // reversed single quote
		"“", `"`, // left double quote
		"”", `"`, // right double quote
	).Replace(s)

	// (c) underscores to spaces, collapse runs, trim
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")

	// (d) title case, then force acronym spellings
	s = c.title.String(s)
	s = strings.ReplaceAll(s, "'S", "'s")
	s = c.applyAcronyms(s)

	return s
}

// applyAcronyms rewrites each token whose core matches the dictionary.
// Leading/trailing punctuation on a token is preserved ("Nlp," -> "NLP,").
func (c *Canonicalizer) applyAcronyms(s string) string {
	if len(c.acronyms) == 0 {
		return s
	}
	tokens := strings.Split(s, " ")
	for i, tok := range tokens {
		core, lead, trail := trimToken(tok)
		if core == "" {
			continue
		}
		if forced, ok := c.acronyms[strings.ToLower(core)]; ok {
			tokens[i] = lead + forced + trail
		}
	}
	return strings.Join(tokens, " ")
}

// trimToken splits a token into leading punctuation, core, and trailing
// punctuation. Slashes and apostrophes are part of the core so compound
// forms like "AR/VR" and possessives survive intact.
func trimToken(tok string) (core, lead, trail string) {
	isCore := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '/' || r == '\''
	}
	runes := []rune(tok)
	start, end := 0, len(runes)
	for start < end && !isCore(runes[start]) {
		start++
	}
	for end > start && !isCore(runes[end-1]) {
		end--
	}
	return string(runes[start:end]), string(runes[:start]), string(runes[end:])
}

// IsNoise classifies a label as non-substantive: empty, a placeholder
// naming pattern, or containing a registered mis-encoding marker.
func (c *Canonicalizer) IsNoise(label string) bool {
	s := strings.TrimSpace(label)
	if s == "" {
		return true
	}
	for _, p := range c.placeholders {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	for _, j := range c.junk {
		if strings.Contains(s, j) {
			return true
		}
	}
	return false
}

// ApplyOverride rewrites a normalized label through the override table.
// Table order decides; the first matching rule wins. sourceFile qualifies
// file-scoped overrides and may be empty.
func (c *Canonicalizer) ApplyOverride(label, sourceFile string) string {
	for _, ov := range c.overrides {
		if ov.Match != label {
			continue
		}
		if ov.SourceFile != "" && ov.SourceFile != sourceFile {
			continue
		}
		return ov.Replace
	}
	return label
}
