package obs

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSourceType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SourceType
		wantErr bool
	}{
		{name: "csv", input: "csv", want: SourceCSV},
		{name: "csv uppercase", input: "CSV", want: SourceCSV},
		{name: "xlsx", input: "xlsx", want: SourceXLSX},
		{name: "excel legacy label", input: "Excel", want: SourceXLSX},
		{name: "xls legacy label", input: "xls", want: SourceXLSX},
		{name: "web extraction folds to csv", input: "Web Extraction", want: SourceCSV},
		{name: "statistical extraction folds to csv", input: "Statistical Extraction", want: SourceCSV},
		{name: "whitespace tolerated", input: "  csv  ", want: SourceCSV},
		{name: "unknown rejected", input: "parquet", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSourceType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKey_String(t *testing.T) {
	k := Key{Year: 2021, ISO3: "FRA", Metric: "AI Talent Index"}
	assert.Equal(t, "(2021, FRA, AI Talent Index)", k.String())
}

func TestObservation_Key(t *testing.T) {
	o := Observation{
		Year: 2021, Country: "France", ISO3: "FRA",
		Metric: "AI Talent Index", Value: 2.5,
		Provenance: Provenance{Source: "Tortoise"},
	}
	// Provenance and display name do not participate in logical identity.
	p := o
	p.Country = "FRANCE"
	p.Provenance.Source = "OECD"
	assert.Equal(t, o.Key(), p.Key())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1.5, "1.5"},
		{-3, "-3"},
		{0.1, "0.1"},
		{1234567, "1.234567e+06"},
		{72.25, "72.25"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in), "value %v", tt.in)
	}
}

func TestRecord_FollowsColumnOrder(t *testing.T) {
	o := Observation{
		Year: 2019, Country: "Germany", ISO3: "DEU",
		Metric: "GDP Per Capita", Value: 46794.9,
		Provenance: Provenance{
			Source:     "World Bank",
			Dataset:    "WDI",
			Category:   "Economy",
			SourceFile: "wdi.csv",
			SourceType: SourceCSV,
			SourceYear: "2020",
		},
	}

	rec := o.Record()
	require.Len(t, rec, len(Columns))
	assert.Equal(t, []string{
		"2019", "Germany", "DEU", "GDP Per Capita", "46794.9",
		"WDI", "World Bank", "Economy", "wdi.csv", "csv", "2020",
	}, rec)
}

func TestCompare_TotalOrder(t *testing.T) {
	mk := func(year int, country, metric string, value float64, src string) Observation {
		return Observation{
			Year: year, Country: country, Metric: metric, Value: value,
			Provenance: Provenance{Source: src},
		}
	}

	// Deliberately shuffled input.
	input := []Observation{
		mk(2021, "France", "B Metric", 1, "x"),
		mk(2020, "Romania", "A Metric", 5, "x"),
		mk(2021, "France", "A Metric", 2, "b"),
		mk(2021, "France", "A Metric", 2, "a"),
		mk(2021, "France", "A Metric", 1, "x"),
		mk(2020, "France", "Z Metric", 9, "x"),
	}
	sort.SliceStable(input, func(i, j int) bool { return Compare(input[i], input[j]) < 0 })

	want := []Observation{
		mk(2020, "France", "Z Metric", 9, "x"),
		mk(2020, "Romania", "A Metric", 5, "x"),
		mk(2021, "France", "A Metric", 1, "x"),
		mk(2021, "France", "A Metric", 2, "a"),
		mk(2021, "France", "A Metric", 2, "b"),
		mk(2021, "France", "B Metric", 1, "x"),
	}
	assert.Equal(t, want, input)
}

func TestCompare_IndependentOfArrivalOrder(t *testing.T) {
	a := Observation{Year: 2021, Country: "France", Metric: "M", Value: 1}
	b := Observation{Year: 2021, Country: "France", Metric: "M", Value: 2}
	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(b, a))
	assert.Equal(t, 0, Compare(a, a))
}
