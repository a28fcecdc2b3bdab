package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/gnsstime/internal/domain/entities"
)

func TestConvertHandler_Handle(t *testing.T) {
	service, _ := newConversionService(t)
	corrections := NewCorrectionHandler(service)
	addCorrection(t, corrections, "UTC", "GPST", "2020-01-01", 18)
	addCorrection(t, corrections, "BDT", "UTC", "2020-01-01", -4)

	handler := NewConvertHandler(service, entities.GPST)

	tests := []struct {
		name     string
		req      ConvertRequest
		expected string
		path     []entities.TimeScale
	}{
		{
			name:     "explicit target",
			req:      ConvertRequest{Epoch: "2020-06-01T00:00:00 UTC", Target: "GPST"},
			expected: "2020-06-01T00:00:18 GPST",
			path:     []entities.TimeScale{entities.UTC, entities.GPST},
		},
		{
			name:     "default target",
			req:      ConvertRequest{Epoch: "2020-06-01T00:00:00 BDT"},
			expected: "2020-06-01T00:00:14 GPST",
			path:     []entities.TimeScale{entities.BDT, entities.UTC, entities.GPST},
		},
		{
			name:     "bare epoch with scale",
			req:      ConvertRequest{Epoch: "2020-06-01", Scale: "GPST", Target: "UTC"},
			expected: "2020-05-31T23:59:42 UTC",
			path:     []entities.TimeScale{entities.GPST, entities.UTC},
		},
		{
			name:     "identity",
			req:      ConvertRequest{Epoch: "2020-06-01T00:00:00 GPST"},
			expected: "2020-06-01T00:00:00 GPST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler.Handle(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Conversion.Epoch.String())
			assert.Equal(t, tt.path, result.Conversion.Path)
			assert.NoError(t, result.Warning())
		})
	}
}

func TestConvertHandler_Handle_Extrapolated(t *testing.T) {
	service, _ := newConversionService(t)
	addCorrection(t, NewCorrectionHandler(service), "UTC", "GPST", "2020-01-01", 18)

	handler := NewConvertHandler(service, entities.GPST)

	result, err := handler.Handle(ConvertRequest{Epoch: "2019-06-01T00:00:00 UTC"})
	require.NoError(t, err)
	assert.Equal(t, "2019-06-01T00:00:18 GPST", result.Conversion.Epoch.String())
	assert.ErrorIs(t, result.Warning(), entities.ErrExtrapolatedCorrection)
}

func TestConvertHandler_Handle_Errors(t *testing.T) {
	service, _ := newConversionService(t)
	handler := NewConvertHandler(service, entities.TimeScaleUnknown)

	tests := []struct {
		name    string
		req     ConvertRequest
		message string
	}{
		{name: "missing scale", req: ConvertRequest{Epoch: "2020-01-01T00:00:00", Target: "UTC"}, message: "missing time scale"},
		{name: "bad scale", req: ConvertRequest{Epoch: "2020-01-01", Scale: "XYZ", Target: "UTC"}, message: "scale"},
		{name: "bad target", req: ConvertRequest{Epoch: "2020-01-01T00:00:00 UTC", Target: "utc"}, message: "target"},
		{name: "no target", req: ConvertRequest{Epoch: "2020-01-01T00:00:00 UTC"}, message: "no target"},
		{name: "no path", req: ConvertRequest{Epoch: "2020-01-01T00:00:00 UTC", Target: "GST"}, message: "converting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(tt.req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	_, err := handler.Handle(ConvertRequest{Epoch: "2020-01-01T00:00:00 UTC", Target: "GST"})
	assert.ErrorIs(t, err, entities.ErrNoConversionPath)
}
