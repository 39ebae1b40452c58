package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const utf8BOM = "\ufeff"

// CSVParser reads delimited text with a header row. Rows may be ragged.
type CSVParser struct {
	Comma rune   // defaults to ','
	Name  string // defaults to "csv"
}

func (p *CSVParser) Format() string {
	if p.Name == "" {
		return "csv"
	}
	return p.Name
}

func (p *CSVParser) reader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	if p.Comma != 0 {
		cr.Comma = p.Comma
	}
	cr.FieldsPerRecord = -1
	return cr
}

// Parse reads the header verbatim and maps every following record onto it.
// Blank lines are skipped by encoding/csv; fields past the header are ignored.
func (p *CSVParser) Parse(r io.Reader) (*Table, error) {
	cr := p.reader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: missing header row")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	t := &Table{Header: header}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		row := make(Row, len(rec))
		for i, v := range rec {
			if i >= len(header) {
				break
			}
			row[header[i]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Count returns the number of data records without building rows.
func (p *CSVParser) Count(r io.Reader) (int, error) {
	cr := p.reader(r)
	cr.ReuseRecord = true

	n := -1
	for {
		_, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("counting rows: %w", err)
		}
		n++
	}
	if n < 0 {
		return 0, nil
	}
	return n, nil
}
