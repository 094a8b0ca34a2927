// Package ingest reads delimited race-results files into an order-preserving
// tabular form. Delimiters are auto-detected from the first few lines, which
// copes with the mix of CSV, TSV and hand-aligned text files that race
// organisers publish.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Table is a parsed results sheet: the header columns in source order and
// one string-valued map per data row. Values are kept as raw strings;
// interpretation belongs to the normalization layer.
type Table struct {
	Columns []string
	Rows    []map[string]string
	Source  string
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// delimWhitespace marks a whitespace-run delimited file, which cannot be
// expressed as a single csv.Reader comma.
const delimWhitespace = rune(0)

// detectSampleLines bounds how much of the input delimiter detection reads.
const detectSampleLines = 5

// DetectDelimiter inspects the first few lines and returns the first
// candidate delimiter that occurs a consistent, nonzero number of times on
// every nonblank line. Candidates are tried in order: comma, tab, pipe,
// semicolon, space. When none is consistent the file is treated as
// whitespace-run delimited.
func DetectDelimiter(text string) rune {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == detectSampleLines {
			break
		}
	}
	if len(lines) == 0 {
		return delimWhitespace
	}

	for _, delim := range []rune{',', '\t', '|', ';', ' '} {
		count := strings.Count(lines[0], string(delim))
		if count == 0 {
			continue
		}
		consistent := true
		for _, line := range lines[1:] {
			if strings.Count(line, string(delim)) != count {
				consistent = false
				break
			}
		}
		if consistent {
			return delim
		}
	}
	return delimWhitespace
}

// ParseText parses delimited text into a Table. A zero delimiter triggers
// auto-detection. The first nonblank line supplies the column names.
func ParseText(text string, delimiter rune) (*Table, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no tabular data in input")
	}
	if delimiter == 0 {
		delimiter = DetectDelimiter(text)
	}

	var records [][]string
	// A space delimiter goes through the fields splitter too, since runs of
	// padding spaces are common in hand-aligned sheets.
	if delimiter == delimWhitespace || delimiter == ' ' {
		for _, line := range strings.Split(text, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			records = append(records, strings.Fields(line))
		}
	} else {
		r := csv.NewReader(strings.NewReader(text))
		r.Comma = delimiter
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		var err error
		records, err = r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to parse delimited text: %w", err)
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no tabular data in input")
	}

	columns := make([]string, len(records[0]))
	for i, c := range records[0] {
		columns[i] = strings.TrimSpace(c)
	}

	table := &Table{Columns: columns}
	for _, rec := range records[1:] {
		if rowIsEmpty(rec) {
			continue
		}
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ReadFile reads a results file into a Table. The extension picks the
// delimiter for .csv and .tsv; anything else is auto-detected.
func ReadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var delimiter rune
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		delimiter = ','
	case ".tsv":
		delimiter = '\t'
	}

	table, err := ParseText(string(data), delimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	table.Source = path
	return table, nil
}

func rowIsEmpty(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
