package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// SV identifies a satellite vehicle by constellation and PRN slot.
//
// The PRN is never validated against the constellation's real slot range; that is
// the caller's responsibility. Constellation may be reassigned (signal
// reclassification); SV is a value type, so each holder owns its copy.
type SV struct {
	Constellation Constellation
	prn           uint8
}

// NewSV returns the satellite prn of constellation c.
func NewSV(c Constellation, prn uint8) SV {
	return SV{Constellation: c, prn: prn}
}

// ParseSV parses a RINEX-style identifier such as "G10", "C05" or "S23".
func ParseSV(s string) (SV, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return SV{}, fmt.Errorf("%w: invalid satellite %q", ErrParse, s)
	}

	c, ok := fromLetter(s[0])
	if !ok {
		return SV{}, fmt.Errorf("%w: unknown system letter in %q", ErrParse, s)
	}
	prn, err := strconv.ParseUint(strings.TrimSpace(s[1:]), 10, 8)
	if err != nil {
		return SV{}, fmt.Errorf("%w: invalid PRN in %q", ErrParse, s)
	}
	return NewSV(c, uint8(prn)), nil
}

// PRN returns the slot number.
func (sv SV) PRN() uint8 {
	return sv.prn
}

// TimeScale returns the native time scale of the satellite's constellation.
func (sv SV) TimeScale() TimeScale {
	return sv.Constellation.TimeScale()
}

// String renders the RINEX identifier, e.g. "G10".
func (sv SV) String() string {
	return fmt.Sprintf("%c%02d", sv.Constellation.Letter(), sv.prn)
}
