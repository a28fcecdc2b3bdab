package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVColumns is the column order written by WriteCSV.
var CSVColumns = []string{"id", "source", "target", "reference", "coefficients", "validity", "origin"}

var requiredColumns = []string{"source", "target", "reference", "coefficients"}

// CSVParser parses corrections from CSV with a header row.
// The coefficients column holds space-separated numbers.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed corrections.
func (p *CSVParser) Parse(r io.Reader) ([]RawCorrection, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}

	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]RawCorrection, error) {
	var rows []RawCorrection
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		row, err := p.parseRecord(record, colIndex, lineNum)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (p *CSVParser) parseRecord(record []string, colIndex map[string]int, lineNum int) (RawCorrection, error) {
	row := RawCorrection{
		ID:        getColumn(record, colIndex, "id"),
		Source:    getColumn(record, colIndex, "source"),
		Target:    getColumn(record, colIndex, "target"),
		Reference: getColumn(record, colIndex, "reference"),
		Validity:  getColumn(record, colIndex, "validity"),
		Origin:    getColumn(record, colIndex, "origin"),
		LineNum:   lineNum,
	}

	for _, field := range strings.Fields(getColumn(record, colIndex, "coefficients")) {
		c, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return RawCorrection{}, fmt.Errorf("line %d: invalid coefficient %q: %w", lineNum, field, err)
		}
		row.Coefficients = append(row.Coefficients, c)
	}

	return row, nil
}

// getColumn safely retrieves a trimmed column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func formatCoefficients(coefficients []float64) string {
	fields := make([]string, len(coefficients))
	for i, c := range coefficients {
		fields[i] = strconv.FormatFloat(c, 'g', -1, 64)
	}
	return strings.Join(fields, " ")
}
