package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/gnsstime/internal/domain/entities"
)

func testCorrection(t *testing.T) entities.StoredCorrection {
	t.Helper()
	ref, err := entities.ParseEpoch("2020-01-01T00:00:00 UTC")
	require.NoError(t, err)
	poly, err := entities.NewPolynomial(18)
	require.NoError(t, err)
	c, err := entities.NewTimeCorrection(entities.UTC, entities.GPST, ref, poly)
	require.NoError(t, err)
	return entities.StoredCorrection{
		ID:         "utc-gps",
		Correction: c.WithValidity(entities.Day),
		Origin:     "bulletin|c",
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFormatMarkdown(t *testing.T) {
	var buf bytes.Buffer
	err := formatMarkdown(&buf, []entities.StoredCorrection{testCorrection(t)})
	require.NoError(t, err)

	result := buf.String()
	assert.Contains(t, result, "# Exported Corrections")
	assert.Contains(t, result, "Total: 1 corrections")
	assert.Contains(t, result, "| UTC | GPST | 2020-01-01T00:00:00 UTC | [18 s] | 24h0m0s | bulletin\\|c |")
}

func TestFormatMarkdown_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatMarkdown(&buf, nil))
	assert.Contains(t, buf.String(), "Total: 0 corrections")
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"a|b", "a\\|b"},
		{"line\nbreak", "line break"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, escapeMarkdown(tt.input))
	}
}

func TestWriteOutput(t *testing.T) {
	write := func(w io.Writer) (int, error) {
		_, err := io.WriteString(w, "data")
		return 1, err
	}

	t.Run("stdout", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := writeOutput(&buf, "", write)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, "data", buf.String())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		var buf bytes.Buffer
		_, err := writeOutput(&buf, path, write)
		require.NoError(t, err)
		assert.Empty(t, buf.String())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "data", string(data))
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := writeOutput(io.Discard, filepath.Join(t.TempDir(), "no", "out.json"), write)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "creating file")
	})

	t.Run("write error", func(t *testing.T) {
		_, err := writeOutput(io.Discard, "", func(io.Writer) (int, error) { return 0, errors.New("boom") })
		require.Error(t, err)
	})
}

func TestFormatDetails(t *testing.T) {
	assert.Equal(t, "", formatDetails(nil))
	assert.Equal(t, "imported=3 origin=igs.csv", formatDetails(map[string]any{"origin": "igs.csv", "imported": 3}))
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	err := printHistory(&buf, []entities.AuditEntry{
		{Action: entities.AuditPrune, Details: map[string]any{"removed": 2}, CreatedAt: time.Now()},
		{Action: entities.AuditAdd, CorrectionID: "utc-gps", CreatedAt: time.Now()},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "prune")
	assert.Contains(t, lines[1], "removed=2")
	assert.Contains(t, lines[2], "utc-gps")
}

func TestPrintCorrections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printCorrections(&buf, []entities.StoredCorrection{testCorrection(t)}))

	assert.Contains(t, buf.String(), "UTC->GPST")
	assert.Contains(t, buf.String(), "24h0m0s")
}
