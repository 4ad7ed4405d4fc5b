package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVProvider implements TableProvider for CSV files. It performs no
// semantic validation; parsing and cleaning belong to the quality
// validator so malformed rows are counted instead of lost.
type CSVProvider struct {
	comma rune
}

// NewCSVProvider creates a new CSV table provider.
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{comma: ','}
}

// NewCSVProviderWithDelimiter creates a provider for delimiter
// variants such as semicolon-separated exports.
func NewCSVProviderWithDelimiter(comma rune) *CSVProvider {
	return &CSVProvider{comma: comma}
}

// GetName returns the name of the provider.
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadTable reads the file into a RawTable. The first row is taken as
// the header. Records with a deviating field count are kept as-is;
// downstream cleaning decides their fate.
func (p *CSVProvider) LoadTable(source string) (*RawTable, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", source, err)
	}
	defer file.Close()

	return p.Read(file)
}

// Read parses CSV content from r into a RawTable.
func (p *CSVProvider) Read(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty input: no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read record %d: %w", len(records)+2, err)
		}
		records = append(records, record)
	}

	return &RawTable{Header: header, Records: records}, nil
}
