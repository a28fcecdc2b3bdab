package entities

import (
	"fmt"
	"strings"
	"time"
)

const (
	nanosPerSecond = int64(time.Second)
	secondsPerWeek = int64(7 * 24 * 60 * 60)
)

// Week zero of each GNSS week counter, as calendar seconds in the scale's own labels.
var (
	gpsWeekZero     = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC).Unix()
	galileoWeekZero = time.Date(1999, time.August, 22, 0, 0, 0, 0, time.UTC).Unix()
	beidouWeekZero  = time.Date(2006, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
)

// epochLayouts are tried in order by ParseEpochIn. A fractional second of up to nine
// digits is accepted after the seconds field by time.Parse.
var epochLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Epoch is an absolute instant expressed in a time scale.
//
// The instant is stored as calendar seconds elapsed since 1970-01-01T00:00:00 of the
// epoch's own scale plus a nanosecond remainder in [0, 1e9). Calendar labels carry no
// leap seconds: moving an epoch to another scale is the job of a TimeCorrection.
// Epochs in different scales cannot be compared or subtracted.
type Epoch struct {
	seconds int64
	nanos   int64
	scale   TimeScale
}

// NewEpoch builds an epoch from calendar seconds and nanoseconds; nanos may be
// out of range and is normalized into [0, 1e9).
func NewEpoch(seconds, nanos int64, scale TimeScale) Epoch {
	seconds += floorDiv(nanos, nanosPerSecond)
	nanos = floorMod(nanos, nanosPerSecond)
	return Epoch{seconds: seconds, nanos: nanos, scale: scale}
}

// FromGregorian builds an epoch from a proleptic Gregorian date and time of day.
// Out-of-range fields are normalized the way time.Date does.
func FromGregorian(year int, month time.Month, day, hour, minute, second, nanos int, scale TimeScale) Epoch {
	t := time.Date(year, month, day, hour, minute, second, nanos, time.UTC)
	return Epoch{seconds: t.Unix(), nanos: int64(t.Nanosecond()), scale: scale}
}

// FromTimeOfWeek builds an epoch from a GNSS week counter and the nanoseconds
// elapsed within that week. Week zero depends on the scale: 1980-01-06 for GPST
// (and the scales aligned with it), 1999-08-22 for GST and IRNSST, 2006-01-01 for BDT.
func FromTimeOfWeek(week uint32, towNanos uint64, scale TimeScale) Epoch {
	seconds := weekZero(scale) + int64(week)*secondsPerWeek
	seconds += int64(towNanos / uint64(nanosPerSecond))
	return Epoch{seconds: seconds, nanos: int64(towNanos % uint64(nanosPerSecond)), scale: scale}
}

// ParseEpoch parses "<ISO-8601 date-time> <time scale>", e.g. "2020-01-01T00:00:00 UTC".
func ParseEpoch(text string) (Epoch, error) {
	text = strings.TrimSpace(text)
	idx := strings.LastIndexByte(text, ' ')
	if idx < 0 {
		return Epoch{}, fmt.Errorf("%w: missing time scale in %q", ErrParse, text)
	}

	scale, err := ParseTimeScale(text[idx+1:])
	if err != nil {
		return Epoch{}, err
	}
	return ParseEpochIn(text[:idx], scale)
}

// ParseEpochIn parses a bare ISO-8601 date-time and tags it with scale.
func ParseEpochIn(text string, scale TimeScale) (Epoch, error) {
	if !scale.IsValid() {
		return Epoch{}, fmt.Errorf("%w: invalid time scale %s", ErrParse, scale)
	}
	text = strings.TrimSpace(text)
	for _, layout := range epochLayouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return Epoch{seconds: t.Unix(), nanos: int64(t.Nanosecond()), scale: scale}, nil
		}
	}
	return Epoch{}, fmt.Errorf("%w: malformed date-time %q", ErrParse, text)
}

// TimeScale returns the scale the epoch is expressed in.
func (e Epoch) TimeScale() TimeScale {
	return e.scale
}

// CalendarSeconds returns the whole seconds since 1970-01-01T00:00:00 in the epoch's scale.
func (e Epoch) CalendarSeconds() int64 {
	return e.seconds
}

// Nanos returns the sub-second remainder, always in [0, 1e9).
func (e Epoch) Nanos() int64 {
	return e.nanos
}

// IsZero reports whether e is the zero Epoch.
func (e Epoch) IsZero() bool {
	return e == Epoch{}
}

// Relabel returns the same calendar reading tagged with another scale.
// No correction is applied; use a TimeCorrection to change scales physically.
func (e Epoch) Relabel(scale TimeScale) Epoch {
	e.scale = scale
	return e
}

// Add returns e shifted by d, in the same scale.
// It panics if the result leaves the int64 seconds range, which no calendar date reaches.
func (e Epoch) Add(d Duration) Epoch {
	secs := int64(d / Second)
	nanos := e.nanos + int64(d%Second)
	secs += floorDiv(nanos, nanosPerSecond)
	nanos = floorMod(nanos, nanosPerSecond)

	sum := e.seconds + secs
	if (secs > 0 && sum < e.seconds) || (secs < 0 && sum > e.seconds) {
		panic(fmt.Sprintf("entities: epoch %d s shifted by %s overflows", e.seconds, d))
	}
	return Epoch{seconds: sum, nanos: nanos, scale: e.scale}
}

// Sub returns e-o. Both epochs must be in the same scale.
func (e Epoch) Sub(o Epoch) (Duration, error) {
	if e.scale != o.scale {
		return 0, fmt.Errorf("%w: %s - %s", ErrScaleMismatch, e.scale, o.scale)
	}

	ds := e.seconds - o.seconds
	if (o.seconds > 0 && ds > e.seconds) || (o.seconds < 0 && ds < e.seconds) {
		return 0, fmt.Errorf("%w: epochs too far apart", ErrOverflow)
	}
	whole, err := Duration(ds).Mul(nanosPerSecond)
	if err != nil {
		return 0, err
	}
	return whole.Add(Duration(e.nanos - o.nanos))
}

// Compare returns -1, 0 or +1 depending on whether e is before, equal to or after o.
// Comparing epochs of different scales is a programming error and panics.
func (e Epoch) Compare(o Epoch) int {
	if e.scale != o.scale {
		panic(fmt.Sprintf("entities: comparing epochs across time scales %s and %s", e.scale, o.scale))
	}
	return e.CompareNominal(o)
}

// CompareNominal compares calendar readings and ignores the time scales.
// It is only meaningful for ordering epochs whose scales differ by a small offset.
func (e Epoch) CompareNominal(o Epoch) int {
	switch {
	case e.seconds < o.seconds:
		return -1
	case e.seconds > o.seconds:
		return 1
	case e.nanos < o.nanos:
		return -1
	case e.nanos > o.nanos:
		return 1
	default:
		return 0
	}
}

// Before reports whether e is strictly before o (same scale only).
func (e Epoch) Before(o Epoch) bool {
	return e.Compare(o) < 0
}

// After reports whether e is strictly after o (same scale only).
func (e Epoch) After(o Epoch) bool {
	return e.Compare(o) > 0
}

// TimeOfWeek returns the GNSS week counter and the nanoseconds elapsed within the week.
// Epochs before the scale's week zero yield negative weeks.
func (e Epoch) TimeOfWeek() (week int64, towNanos uint64) {
	elapsed := e.seconds - weekZero(e.scale)
	week = floorDiv(elapsed, secondsPerWeek)
	tow := floorMod(elapsed, secondsPerWeek)
	return week, uint64(tow)*uint64(nanosPerSecond) + uint64(e.nanos)
}

// Time returns the calendar reading as a time.Time in the UTC location.
// The location only carries the labels; the epoch's scale is not encoded.
func (e Epoch) Time() time.Time {
	return time.Unix(e.seconds, e.nanos).UTC()
}

// String renders "2020-01-01T00:00:00 UTC", with nine fractional digits when
// the sub-second remainder is non-zero.
func (e Epoch) String() string {
	var b strings.Builder
	b.WriteString(e.Time().Format("2006-01-02T15:04:05"))
	if e.nanos != 0 {
		fmt.Fprintf(&b, ".%09d", e.nanos)
	}
	b.WriteByte(' ')
	b.WriteString(e.scale.String())
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (e Epoch) MarshalText() ([]byte, error) {
	if !e.scale.IsValid() {
		return nil, fmt.Errorf("%w: epoch without time scale", ErrParse)
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Epoch) UnmarshalText(text []byte) error {
	parsed, err := ParseEpoch(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func weekZero(scale TimeScale) int64 {
	switch scale {
	case GST, IRNSST:
		return galileoWeekZero
	case BDT:
		return beidouWeekZero
	default:
		return gpsWeekZero
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
