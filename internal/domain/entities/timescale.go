package entities

import "fmt"

// TimeScale identifies an atomic or broadcast time scale.
type TimeScale uint8

// Supported time scales. The zero value is not a valid scale.
const (
	TimeScaleUnknown TimeScale = iota
	GPST                       // GPS time
	BDT                        // BeiDou time
	GST                        // Galileo system time
	GLONASST                   // GLONASS time
	QZSST                      // QZSS time
	IRNSST                     // IRNSS (NavIC) time
	UTC                        // coordinated universal time
	TAI                        // international atomic time
	TT                         // terrestrial time
)

// timeScaleNames is indexed by TimeScale.
var timeScaleNames = [...]string{
	TimeScaleUnknown: "",
	GPST:             "GPST",
	BDT:              "BDT",
	GST:              "GST",
	GLONASST:         "GLONASST",
	QZSST:            "QZSST",
	IRNSST:           "IRNSST",
	UTC:              "UTC",
	TAI:              "TAI",
	TT:               "TT",
}

// AllTimeScales lists every valid time scale in declaration order.
func AllTimeScales() []TimeScale {
	scales := make([]TimeScale, 0, len(timeScaleNames)-1)
	for ts := GPST; int(ts) < len(timeScaleNames); ts++ {
		scales = append(scales, ts)
	}
	return scales
}

// ParseTimeScale parses a short code such as "GPST" or "UTC". Matching is case-sensitive.
func ParseTimeScale(s string) (TimeScale, error) {
	for ts := GPST; int(ts) < len(timeScaleNames); ts++ {
		if timeScaleNames[ts] == s {
			return ts, nil
		}
	}
	return TimeScaleUnknown, fmt.Errorf("%w: unknown time scale %q", ErrParse, s)
}

// IsValid reports whether ts is one of the declared scales.
func (ts TimeScale) IsValid() bool {
	return ts != TimeScaleUnknown && int(ts) < len(timeScaleNames)
}

// String returns the short code.
func (ts TimeScale) String() string {
	if !ts.IsValid() {
		return fmt.Sprintf("TimeScale(%d)", uint8(ts))
	}
	return timeScaleNames[ts]
}

// MarshalText implements encoding.TextMarshaler.
func (ts TimeScale) MarshalText() ([]byte, error) {
	if !ts.IsValid() {
		return nil, fmt.Errorf("%w: cannot marshal %s", ErrParse, ts)
	}
	return []byte(ts.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ts *TimeScale) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeScale(string(text))
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
