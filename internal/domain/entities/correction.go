package entities

import "fmt"

// TimeCorrection converts epochs from a source time scale to a target time scale.
// Applying it adds polynomial.Evaluate(reference, t) to a source-scale epoch t.
// The reference epoch is always expressed in the source scale.
type TimeCorrection struct {
	source     TimeScale
	target     TimeScale
	reference  Epoch
	polynomial Polynomial
	validity   Duration
}

// NewTimeCorrection builds a correction from source to target anchored at reference.
func NewTimeCorrection(source, target TimeScale, reference Epoch, polynomial Polynomial) (TimeCorrection, error) {
	if !source.IsValid() || !target.IsValid() {
		return TimeCorrection{}, fmt.Errorf("%w: invalid time scale %s/%s", ErrInvalidCorrection, source, target)
	}
	if source == target {
		return TimeCorrection{}, fmt.Errorf("%w: %s to itself", ErrInvalidCorrection, source)
	}
	if reference.TimeScale() != source {
		return TimeCorrection{}, fmt.Errorf("%w: reference epoch in %s, correction source is %s",
			ErrScaleMismatch, reference.TimeScale(), source)
	}
	if len(polynomial.coefficients) == 0 {
		return TimeCorrection{}, ErrEmptyPolynomial
	}
	return TimeCorrection{
		source:     source,
		target:     target,
		reference:  reference,
		polynomial: polynomial,
	}, nil
}

// WithValidity returns a copy valid for |t - reference| < validity.
// A zero validity, the default, means the correction never expires.
func (c TimeCorrection) WithValidity(validity Duration) TimeCorrection {
	c.validity = validity.Abs()
	return c
}

// Source returns the scale the correction converts from.
func (c TimeCorrection) Source() TimeScale { return c.source }

// Target returns the scale the correction converts to.
func (c TimeCorrection) Target() TimeScale { return c.target }

// Reference returns the reference epoch, in the source scale.
func (c TimeCorrection) Reference() Epoch { return c.reference }

// Polynomial returns the correction polynomial.
func (c TimeCorrection) Polynomial() Polynomial { return c.polynomial }

// Validity returns the publication validity period, zero when unbounded.
func (c TimeCorrection) Validity() Duration { return c.validity }

// Offset returns the correction to add to epoch, which must be in the source scale.
func (c TimeCorrection) Offset(epoch Epoch) (Duration, error) {
	if epoch.TimeScale() != c.source {
		return 0, fmt.Errorf("%w: epoch in %s, correction expects %s", ErrScaleMismatch, epoch.TimeScale(), c.source)
	}
	return c.polynomial.Evaluate(c.reference, epoch)
}

// Apply converts epoch from the source scale into the target scale.
func (c TimeCorrection) Apply(epoch Epoch) (Epoch, error) {
	offset, err := c.Offset(epoch)
	if err != nil {
		return Epoch{}, err
	}
	return epoch.Relabel(c.target).Add(offset), nil
}

// Inverse returns the target-to-source correction. The reference epoch is moved into
// the target scale by one forward application and every coefficient is negated.
// This is exact for degree 0 and 1; for higher degrees it is a first-order
// approximation whose error grows with the drift terms.
//
// It fails with ErrOverflow when the constant term does not fit in a Duration.
func (c TimeCorrection) Inverse() (TimeCorrection, error) {
	reference, err := c.Apply(c.reference)
	if err != nil {
		return TimeCorrection{}, fmt.Errorf("inverting %s: %w", c, err)
	}
	return TimeCorrection{
		source:     c.target,
		target:     c.source,
		reference:  reference,
		polynomial: c.polynomial.Negate(),
		validity:   c.validity,
	}, nil
}

// Applies reports whether epoch falls within the validity period. Epochs in
// another scale never qualify; unbounded corrections always do.
func (c TimeCorrection) Applies(epoch Epoch) bool {
	if epoch.TimeScale() != c.source {
		return false
	}
	if c.validity == 0 {
		return true
	}
	dt, err := epoch.Sub(c.reference)
	if err != nil {
		return false
	}
	return dt.Abs() < c.validity
}

// ValidityStart returns the first epoch the correction applies to.
func (c TimeCorrection) ValidityStart() Epoch {
	return c.reference.Add(-c.validity)
}

// ValidityEnd returns the last epoch the correction applies to.
func (c TimeCorrection) ValidityEnd() Epoch {
	return c.reference.Add(c.validity)
}

// Equal reports whether both corrections carry the same data.
func (c TimeCorrection) Equal(o TimeCorrection) bool {
	return c.source == o.source &&
		c.target == o.target &&
		c.reference == o.reference &&
		c.validity == o.validity &&
		c.polynomial.Equal(o.polynomial)
}

// String renders "(UTC-GPST)=[1e-08 s] at 2020-01-01T00:00:00 UTC".
func (c TimeCorrection) String() string {
	return fmt.Sprintf("(%s-%s)=%s at %s", c.source, c.target, c.polynomial, c.reference)
}
