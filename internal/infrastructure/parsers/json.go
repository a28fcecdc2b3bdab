package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses corrections from a JSON array.
type JSONParser struct{}

// Parse reads JSON from the reader and returns parsed corrections.
func (p *JSONParser) Parse(r io.Reader) ([]RawCorrection, error) {
	var rows []RawCorrection

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&rows); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Array index + 1, 1-indexed
	for i := range rows {
		rows[i].LineNum = i + 1
	}

	return rows, nil
}
