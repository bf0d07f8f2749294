package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/roach88/gaid/internal/obs"
)

// WriteCSV writes the table to w as the canonical eleven-column flat
// file: a header row followed by one record per observation, in the
// order given. Callers are expected to pass an already-sorted table;
// the writer does not reorder.
func WriteCSV(w io.Writer, observations []obs.Observation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(obs.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, o := range observations {
		if err := cw.Write(o.Record()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a published table back from r. The header must be the
// exact eleven-column contract; rows are returned in file order, which
// for a table we wrote is already the canonical order.
func ReadCSV(r io.Reader) ([]obs.Observation, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(obs.Columns) {
		return nil, fmt.Errorf("header has %d columns, want %d", len(header), len(obs.Columns))
	}
	for i, col := range obs.Columns {
		if header[i] != col {
			return nil, fmt.Errorf("header column %d is %q, want %q", i, header[i], col)
		}
	}

	var observations []obs.Observation
	for row := 1; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			return observations, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		o, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		observations = append(observations, o)
	}
}

// ReadCSVFile reads a published table from path.
func ReadCSVFile(path string) ([]obs.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func parseRecord(record []string) (obs.Observation, error) {
	year, err := strconv.Atoi(record[0])
	if err != nil {
		return obs.Observation{}, fmt.Errorf("bad year %q", record[0])
	}
	value, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return obs.Observation{}, fmt.Errorf("bad value %q", record[4])
	}
	o := obs.Observation{
		Year:    year,
		Country: record[1],
		ISO3:    record[2],
		Metric:  record[3],
		Value:   value,
		Provenance: obs.Provenance{
			Dataset:    record[5],
			Source:     record[6],
			Category:   record[7],
			SourceFile: record[8],
			SourceYear: record[10],
		},
	}
	if record[9] != "" {
		st, err := obs.ParseSourceType(record[9])
		if err != nil {
			return obs.Observation{}, err
		}
		o.Provenance.SourceType = st
	}
	return o, nil
}

// WriteCSVFile writes the table to path, creating parent directories
// as needed. The file is written through a temporary name and renamed
// into place so readers never see a partial table.
func WriteCSVFile(path string, observations []obs.Observation) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, observations); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
