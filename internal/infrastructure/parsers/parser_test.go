package parsers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONParser_Parse_ValidInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []RawCorrection
	}{
		{
			name:  "single correction",
			input: `[{"source": "UTC", "target": "GPST", "reference": "2020-01-01T00:00:00", "coefficients": [18]}]`,
			expected: []RawCorrection{
				{Source: "UTC", Target: "GPST", Reference: "2020-01-01T00:00:00", Coefficients: []float64{18}, LineNum: 1},
			},
		},
		{
			name:     "empty array",
			input:    "[]",
			expected: []RawCorrection{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &JSONParser{}
			result, err := parser.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestJSONParser_Parse_AllFields(t *testing.T) {
	input := `[{
		"id": "gal-gps-1",
		"source": "GST",
		"target": "GPST",
		"reference": "2023-06-15T00:00:00 GST",
		"coefficients": [1.5e-9, -2e-14],
		"validity": "24h",
		"origin": "navigation message"
	}]`

	parser := &JSONParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)

	row := result[0]
	assert.Equal(t, "gal-gps-1", row.ID)
	assert.Equal(t, "GST", row.Source)
	assert.Equal(t, "GPST", row.Target)
	assert.Equal(t, "2023-06-15T00:00:00 GST", row.Reference)
	assert.Equal(t, []float64{1.5e-9, -2e-14}, row.Coefficients)
	assert.Equal(t, "24h", row.Validity)
	assert.Equal(t, "navigation message", row.Origin)
	assert.Equal(t, 1, row.LineNum)
}

func TestJSONParser_Parse_InvalidInput(t *testing.T) {
	parser := &JSONParser{}
	_, err := parser.Parse(strings.NewReader("not json"))
	require.Error(t, err)
}

func TestCSVParser_Parse_ValidInput(t *testing.T) {
	input := "source,target,reference,coefficients,validity\n" +
		"UTC,GPST,2020-01-01T00:00:00,18,\n" +
		"BDT, UTC, 2020-01-01, 4 1e-12 0,12h\n"

	parser := &CSVParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []RawCorrection{
		{Source: "UTC", Target: "GPST", Reference: "2020-01-01T00:00:00", Coefficients: []float64{18}, LineNum: 2},
		{Source: "BDT", Target: "UTC", Reference: "2020-01-01", Coefficients: []float64{4, 1e-12, 0}, Validity: "12h", LineNum: 3},
	}, result)
}

func TestCSVParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{name: "empty", input: "", message: "reading CSV header"},
		{name: "missing column", input: "source,target,reference\nUTC,GPST,2020-01-01\n", message: "missing required column: coefficients"},
		{name: "bad coefficient", input: "source,target,reference,coefficients\nUTC,GPST,2020-01-01,1 x\n", message: "line 2: invalid coefficient"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &CSVParser{}
			_, err := parser.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCSVParser_Parse_MissingCoefficientsValue(t *testing.T) {
	parser := &CSVParser{}
	result, err := parser.Parse(strings.NewReader("source,target,reference,coefficients\nUTC,GPST,2020-01-01,\n"))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Empty(t, result[0].Coefficients)
}

func TestForFormat(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFormat("json"))
	assert.IsType(t, &CSVParser{}, ForFormat("CSV"))
	assert.Nil(t, ForFormat("xml"))
}

func TestForFile(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFile("corrections.json"))
	assert.IsType(t, &CSVParser{}, ForFile("/tmp/table.CSV"))
	assert.Nil(t, ForFile("notes.txt"))
}

func TestWrite_RoundTrip(t *testing.T) {
	rows := []RawCorrection{
		{ID: "a", Source: "UTC", Target: "GPST", Reference: "2020-01-01T00:00:00 UTC", Coefficients: []float64{18}},
		{ID: "b", Source: "GST", Target: "GPST", Reference: "2020-01-01T00:00:00 GST", Coefficients: []float64{1e-9, 2e-14}, Validity: "24h0m0s", Origin: "manual"},
	}

	for _, format := range []string{"json", "csv"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, format, rows))

			parsed, err := ForFormat(format).Parse(&buf)
			require.NoError(t, err)
			require.Len(t, parsed, len(rows))
			for i := range rows {
				assert.Equal(t, rows[i].ID, parsed[i].ID)
				assert.Equal(t, rows[i].Reference, parsed[i].Reference)
				assert.Equal(t, rows[i].Coefficients, parsed[i].Coefficients)
				assert.Equal(t, rows[i].Validity, parsed[i].Validity)
				assert.Equal(t, rows[i].Origin, parsed[i].Origin)
			}
		})
	}

	assert.Error(t, Write(&bytes.Buffer{}, "xml", rows))
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
