package parsers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Write encodes rows in the given format, readable back by ForFormat(format).
func Write(w io.Writer, format string, rows []RawCorrection) error {
	switch strings.ToLower(format) {
	case "json":
		return WriteJSON(w, rows)
	case "csv":
		return WriteCSV(w, rows)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []RawCorrection) error {
	if rows == nil {
		rows = []RawCorrection{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteCSV writes rows with a CSVColumns header.
func WriteCSV(w io.Writer, rows []RawCorrection) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i := range rows {
		row := &rows[i]
		record := []string{
			row.ID,
			row.Source,
			row.Target,
			row.Reference,
			formatCoefficients(row.Coefficients),
			row.Validity,
			row.Origin,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
