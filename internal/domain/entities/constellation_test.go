package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstellationTable_Complete(t *testing.T) {
	for _, c := range AllConstellations() {
		info := constellationTable[c]
		assert.NotEmpty(t, info.name, "constellation %d has no name", c)
		assert.NotEmpty(t, info.short, "constellation %d has no short code", c)
		assert.NotZero(t, info.letter, "constellation %d has no RINEX letter", c)
		assert.True(t, info.timeScale.IsValid(), "constellation %d has no time scale", c)
	}
}

func TestConstellation_TimeScale(t *testing.T) {
	tests := []struct {
		constellation Constellation
		expected      TimeScale
	}{
		{GPS, GPST},
		{Glonass, GLONASST},
		{BeiDou, BDT},
		{QZSS, QZSST},
		{Galileo, GST},
		{IRNSS, IRNSST},
		{WAAS, GPST},
		{EGNOS, GPST},
		{SBAS, GPST},
		{Mixed, GPST},
	}

	for _, tt := range tests {
		t.Run(tt.constellation.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.constellation.TimeScale())
			// Pure: repeated calls agree.
			assert.Equal(t, tt.constellation.TimeScale(), tt.constellation.TimeScale())
		})
	}
}

func TestConstellation_Formatting(t *testing.T) {
	tests := []struct {
		constellation Constellation
		long          string
		short         string
	}{
		{GPS, "GPS (US)", "GPS"},
		{BeiDou, "BeiDou (CH)", "BDS"},
		{Galileo, "Galileo (EU)", "GAL"},
		{Glonass, "Glonass (RU)", "GLO"},
		{EGNOS, "EGNOS (EU)", "EGNOS"},
		{SBAS, "SBAS", "SBAS"},
		{Mixed, "Mixed", "MIXED"},
	}

	for _, tt := range tests {
		t.Run(tt.short, func(t *testing.T) {
			assert.Equal(t, tt.long, tt.constellation.LongString())
			assert.Equal(t, tt.short, tt.constellation.ShortString())
			assert.Equal(t, tt.short, tt.constellation.String())
		})
	}

	assert.Equal(t, "Constellation(250)", Constellation(250).String())
}

func TestFromCountryCode(t *testing.T) {
	c, err := FromCountryCode("US")
	require.NoError(t, err)
	assert.Equal(t, GPS, c)

	c, err = FromCountryCode("CH")
	require.NoError(t, err)
	assert.Equal(t, BeiDou, c)

	for _, code := range []string{"ZZ", "us", "", "USA"} {
		_, err := FromCountryCode(code)
		assert.ErrorIs(t, err, ErrUnknownCountryCode, "code %q", code)
	}
}

func TestFromCountryCode_CanonicalMatchesMetadata(t *testing.T) {
	for code, c := range canonicalByCountry {
		assert.Equal(t, code, c.CountryCode())
	}

	// Every country code in the table resolves to some constellation.
	for _, c := range AllConstellations() {
		if c.CountryCode() == "" {
			continue
		}
		_, err := FromCountryCode(c.CountryCode())
		assert.NoError(t, err, "country code of %s", c)
	}
}

func TestParseConstellation(t *testing.T) {
	tests := []struct {
		input    string
		expected Constellation
	}{
		{"GPS", GPS},
		{"BDS", BeiDou},
		{"BeiDou", BeiDou},
		{"C", BeiDou},
		{"E", Galileo},
		{"R", Glonass},
		{"S", SBAS},
		{"M", Mixed},
		{"EGNOS", EGNOS},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := ParseConstellation(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}

	_, err := ParseConstellation("X")
	assert.ErrorIs(t, err, ErrParse)
}

func TestConstellation_IsSBAS(t *testing.T) {
	assert.False(t, GPS.IsSBAS())
	assert.True(t, WAAS.IsSBAS())
	assert.True(t, SBAS.IsSBAS())
	assert.False(t, Mixed.IsSBAS())
}
