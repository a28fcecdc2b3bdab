// Package parsers reads and writes correction tables in JSON and CSV.
package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// RawCorrection is a correction row as read from a file, before validation.
type RawCorrection struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`

	// Reference is the reference epoch, with or without a trailing scale code.
	// Without one it is read in the source scale.
	Reference string `json:"reference"`

	// Coefficients are c0, c1, ... in s, s/s, s/s^2.
	Coefficients []float64 `json:"coefficients"`

	// Validity is a Go duration string such as "24h"; empty means unbounded.
	Validity string `json:"validity,omitempty"`
	Origin   string `json:"origin,omitempty"`
	LineNum  int    `json:"-"` // Line number in source file (set by parser)
}

// Parser defines the interface for parsing correction tables.
type Parser interface {
	Parse(r io.Reader) ([]RawCorrection, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}
