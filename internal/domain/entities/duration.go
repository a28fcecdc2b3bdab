// Package entities contains core domain data structures: time scales, epochs,
// GNSS identities and the polynomial corrections that link time scales.
package entities

import (
	"fmt"
	"math"
	"time"
)

// Duration is a signed elapsed time counted in nanoseconds.
// Arithmetic reports ErrOverflow instead of wrapping around.
type Duration int64

// Common durations.
const (
	Nanosecond  Duration = 1
	Microsecond          = 1000 * Nanosecond
	Millisecond          = 1000 * Microsecond
	Second               = 1000 * Millisecond
	Minute               = 60 * Second
	Hour                 = 60 * Minute
	Day                  = 24 * Hour
	Week                 = 7 * Day
)

// FromNanoseconds returns a Duration of n nanoseconds.
func FromNanoseconds(n int64) Duration {
	return Duration(n)
}

// FromSeconds converts fractional seconds, rounded to the nearest nanosecond.
func FromSeconds(s float64) (Duration, error) {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, fmt.Errorf("%w: %v seconds", ErrOverflow, s)
	}
	ns := math.Round(s * 1e9)
	// float64(math.MaxInt64) rounds up to 2^63, which is itself out of range.
	if ns >= math.MaxInt64 || ns < math.MinInt64 {
		return 0, fmt.Errorf("%w: %v seconds", ErrOverflow, s)
	}
	return Duration(int64(ns)), nil
}

// Nanoseconds returns the duration as an integer nanosecond count.
func (d Duration) Nanoseconds() int64 {
	return int64(d)
}

// Seconds returns the duration as fractional seconds.
func (d Duration) Seconds() float64 {
	sec := d / Second
	nsec := d % Second
	return float64(sec) + float64(nsec)/1e9
}

// Add returns d+o.
func (d Duration) Add(o Duration) (Duration, error) {
	sum := d + o
	if (o > 0 && sum < d) || (o < 0 && sum > d) {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, d, o)
	}
	return sum, nil
}

// Sub returns d-o.
func (d Duration) Sub(o Duration) (Duration, error) {
	diff := d - o
	if (o > 0 && diff > d) || (o < 0 && diff < d) {
		return 0, fmt.Errorf("%w: %d - %d", ErrOverflow, d, o)
	}
	return diff, nil
}

// Neg returns -d.
func (d Duration) Neg() (Duration, error) {
	if d == math.MinInt64 {
		return 0, fmt.Errorf("%w: -(%d)", ErrOverflow, d)
	}
	return -d, nil
}

// Mul returns d*k.
func (d Duration) Mul(k int64) (Duration, error) {
	if d == 0 || k == 0 {
		return 0, nil
	}
	p := int64(d) * k
	if p/k != int64(d) || (k == -1 && d == math.MinInt64) {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, d, k)
	}
	return Duration(p), nil
}

// Abs returns |d|. math.MinInt64 saturates to math.MaxInt64.
func (d Duration) Abs() Duration {
	switch {
	case d >= 0:
		return d
	case d == math.MinInt64:
		return math.MaxInt64
	default:
		return -d
	}
}

// Compare returns -1, 0 or +1 depending on whether d is shorter, equal or longer than o.
func (d Duration) Compare(o Duration) int {
	switch {
	case d < o:
		return -1
	case d > o:
		return 1
	default:
		return 0
	}
}

// String formats the duration like time.Duration ("10ns", "1.5s", "-2h0m0s").
func (d Duration) String() string {
	return time.Duration(d).String()
}
