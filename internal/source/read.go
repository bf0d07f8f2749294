package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/roach88/gaid/internal/obs"
)

// Read loads the table named by the descriptor, dispatching on its type.
func Read(path string, desc Descriptor) (*Table, error) {
	switch desc.Type {
	case obs.SourceCSV:
		return ReadCSV(path, desc)
	case obs.SourceXLSX:
		return ReadXLSX(path, desc)
	default:
		return nil, fmt.Errorf("source %s: unsupported type %q", desc.Source, desc.Type)
	}
}

// ReadCSV loads a header-driven CSV file. Rows shorter than the header
// leave trailing fields empty; longer rows keep only named fields.
func ReadCSV(path string, desc Descriptor) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", desc.Source, err)
	}
	defer f.Close()
	return readCSV(f, desc)
}

func readCSV(r io.Reader, desc Descriptor) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are the rule, not the exception

	header, err := cr.Read()
	if err == io.EOF {
		return &Table{Desc: desc}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("source %s: reading header: %w", desc.Source, err)
	}

	t := &Table{Desc: desc, Header: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", desc.Source, err)
		}
		t.Rows = append(t.Rows, recordToRow(header, rec))
	}
	return t, nil
}

// ReadXLSX loads the first sheet of a workbook, header-driven like CSV.
func ReadXLSX(path string, desc Descriptor) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", desc.Source, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{Desc: desc}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("source %s: sheet %s: %w", desc.Source, sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{Desc: desc}, nil
	}

	t := &Table{Desc: desc, Header: rows[0]}
	for _, rec := range rows[1:] {
		t.Rows = append(t.Rows, recordToRow(rows[0], rec))
	}
	return t, nil
}

func recordToRow(header, rec []string) Row {
	row := make(Row, len(header))
	for i, field := range header {
		if i < len(rec) {
			row[field] = rec[i]
		} else {
			row[field] = ""
		}
	}
	return row
}
