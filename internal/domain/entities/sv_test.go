package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSV(t *testing.T) {
	sv := NewSV(GPS, 10)
	assert.Equal(t, uint8(10), sv.PRN())
	assert.Equal(t, GPST, sv.TimeScale())

	before := sv.TimeScale()
	sv.Constellation = BeiDou
	assert.Equal(t, BDT, sv.TimeScale())
	assert.Equal(t, GPST, before)
	assert.Equal(t, uint8(10), sv.PRN())
}

func TestSV_ValueSemantics(t *testing.T) {
	a := NewSV(Galileo, 3)
	b := a
	b.Constellation = Glonass

	assert.Equal(t, GST, a.TimeScale())
	assert.Equal(t, GLONASST, b.TimeScale())
}

func TestSV_PRNUnchecked(t *testing.T) {
	sv := NewSV(QZSS, 250)
	assert.Equal(t, uint8(250), sv.PRN())
}

func TestParseSV(t *testing.T) {
	tests := []struct {
		input    string
		expected SV
		text     string
	}{
		{"G10", NewSV(GPS, 10), "G10"},
		{"C05", NewSV(BeiDou, 5), "C05"},
		{"E1", NewSV(Galileo, 1), "E01"},
		{"S23", NewSV(SBAS, 23), "S23"},
		{"R 7", NewSV(Glonass, 7), "R07"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sv, err := ParseSV(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sv)
			assert.Equal(t, tt.text, sv.String())
		})
	}
}

func TestParseSV_Errors(t *testing.T) {
	for _, input := range []string{"", "G", "X10", "G-1", "G300", "Gab"} {
		_, err := ParseSV(input)
		assert.ErrorIs(t, err, ErrParse, "input %q", input)
	}
}
