package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ersonp/gnsstime/internal/application/handlers"
	"github.com/ersonp/gnsstime/internal/domain/entities"
	"github.com/ersonp/gnsstime/internal/domain/mocks"
	"github.com/ersonp/gnsstime/internal/domain/services"
)

func TestParseCoefficients(t *testing.T) {
	coefficients, err := parseCoefficients([]string{"1.5e-9", "-2e-14 0"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5e-9, -2e-14, 0}, coefficients)

	_, err = parseCoefficients([]string{"1", "two"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid coefficient "two"`)
}

func TestParseConflictStrategy(t *testing.T) {
	strategy, err := parseConflictStrategy("overwrite")
	require.NoError(t, err)
	assert.Equal(t, services.ConflictOverwrite, strategy)

	_, err = parseConflictStrategy("merge")
	require.Error(t, err)
}

func TestHopNote(t *testing.T) {
	assert.Equal(t, "", hopNote(false, false))
	assert.Equal(t, " (inverted)", hopNote(true, false))
	assert.Equal(t, " (inverted, extrapolated)", hopNote(true, true))
}

func TestConvertStream(t *testing.T) {
	conversions := services.NewConversionService(mocks.NewCorrectionStore(), nil, zap.NewNop(), services.DBOptions{})
	_, err := handlers.NewCorrectionHandler(conversions).Add(context.Background(), handlers.AddRequest{
		Source:       "UTC",
		Target:       "GPST",
		Reference:    "2020-01-01",
		Coefficients: []float64{18},
	})
	require.NoError(t, err)
	handler := handlers.NewConvertHandler(conversions, entities.GPST)

	input := strings.Join([]string{
		"# epochs to convert",
		"2020-06-01T00:00:00 UTC",
		"",
		"2019-06-01T00:00:00 UTC",
		"2020-06-01T00:00:00 GST",
	}, "\n")

	var out, errOut bytes.Buffer
	err = convertStream(strings.NewReader(input), &out, &errOut, handler, convertFlags{showPath: true})
	require.Error(t, err)
	assert.Equal(t, "1 conversions failed", err.Error())

	assert.Contains(t, out.String(), "2020-06-01T00:00:18 GPST\n")
	assert.Contains(t, out.String(), "2019-06-01T00:00:18 GPST\n")
	assert.Contains(t, out.String(), "(extrapolated)")
	assert.Contains(t, errOut.String(), "warning: ")
	assert.Contains(t, errOut.String(), "2020-06-01T00:00:00 GST: ")
}

func TestPrintConversion_TimeOfWeek(t *testing.T) {
	epoch, err := entities.ParseEpoch("1980-01-13T00:00:01.5 GPST")
	require.NoError(t, err)

	var out bytes.Buffer
	printConversion(&out, &handlers.ConvertResult{
		Input:      epoch,
		Conversion: &services.Conversion{Epoch: epoch},
	}, convertFlags{timeOfWeek: true, showPath: true})

	assert.Equal(t, "1980-01-13T00:00:01.500000000 GPST\n  week 1, tow 1.500000000 s\n  no correction needed\n", out.String())
}
