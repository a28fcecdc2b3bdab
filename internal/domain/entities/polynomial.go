package entities

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Polynomial models the offset between two time scales as a power series in the
// seconds elapsed since a reference epoch:
//
//	offset(t) = c0 + c1*dt + c2*dt^2 + ...   with dt = t - t0 in seconds
//
// Coefficients are in s, s/s, s/s^2 and so on. Evaluation runs in float64; series of
// degree above 2 lose precision quickly when dt spans years, so long-lived
// corrections should be refreshed with a newer reference epoch instead.
type Polynomial struct {
	coefficients []float64
}

// NewPolynomial builds a polynomial from c0, c1, ... It needs at least one
// coefficient, and every coefficient must be finite.
func NewPolynomial(coefficients ...float64) (Polynomial, error) {
	if len(coefficients) == 0 {
		return Polynomial{}, ErrEmptyPolynomial
	}
	for i, c := range coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return Polynomial{}, fmt.Errorf("%w: c%d is %v", ErrInvalidCoefficient, i, c)
		}
	}
	return Polynomial{coefficients: append([]float64(nil), coefficients...)}, nil
}

// FromConstantOffset builds a degree-0 polynomial: a pure offset without drift.
func FromConstantOffset(d Duration) Polynomial {
	return Polynomial{coefficients: []float64{d.Seconds()}}
}

// Coefficients returns a copy of c0, c1, ...
func (p Polynomial) Coefficients() []float64 {
	return append([]float64(nil), p.coefficients...)
}

// Degree returns the index of the highest coefficient.
func (p Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Offset evaluates the series at dt seconds, in seconds.
func (p Polynomial) Offset(dt float64) float64 {
	var sum float64
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		sum = sum*dt + p.coefficients[i]
	}
	return sum
}

// Evaluate returns the offset at query for a series anchored at reference.
// Both epochs must already be in the same scale.
func (p Polynomial) Evaluate(reference, query Epoch) (Duration, error) {
	dt, err := query.Sub(reference)
	if err != nil {
		return 0, fmt.Errorf("evaluating polynomial: %w", err)
	}

	offset, err := FromSeconds(p.Offset(dt.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("evaluating polynomial: %w", err)
	}
	return offset, nil
}

// Negate returns the polynomial with every coefficient sign-flipped.
func (p Polynomial) Negate() Polynomial {
	neg := make([]float64, len(p.coefficients))
	for i, c := range p.coefficients {
		neg[i] = -c
	}
	return Polynomial{coefficients: neg}
}

// Equal reports whether both polynomials have identical coefficients.
func (p Polynomial) Equal(o Polynomial) bool {
	if len(p.coefficients) != len(o.coefficients) {
		return false
	}
	for i := range p.coefficients {
		if p.coefficients[i] != o.coefficients[i] {
			return false
		}
	}
	return true
}

// String renders the coefficients, e.g. "[1e-08 s, 2e-12 s/s]".
func (p Polynomial) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, c := range p.coefficients {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
		b.WriteString(" s")
		switch {
		case i == 1:
			b.WriteString("/s")
		case i > 1:
			fmt.Fprintf(&b, "/s^%d", i)
		}
	}
	b.WriteByte(']')
	return b.String()
}
