package entities

import "errors"

// Sentinel errors for time-scale operations. Callers match them with errors.Is.
var (
	// ErrParse is returned when epoch or time-scale text is malformed.
	ErrParse = errors.New("parse error")

	// ErrScaleMismatch is returned when operands are tagged with incompatible time scales.
	ErrScaleMismatch = errors.New("time scale mismatch")

	// ErrUnknownCountryCode is returned when no constellation owns a country code.
	ErrUnknownCountryCode = errors.New("unknown country code")

	// ErrNoConversionPath is returned when no chain of corrections links two time scales.
	ErrNoConversionPath = errors.New("no conversion path")

	// ErrExtrapolatedCorrection is an advisory, not a failure: the conversion succeeded
	// with a correction whose reference epoch lies after the query epoch.
	ErrExtrapolatedCorrection = errors.New("extrapolated correction")

	// ErrOverflow is returned when duration arithmetic leaves the int64 nanosecond range.
	ErrOverflow = errors.New("duration overflow")

	// ErrEmptyPolynomial is returned when a polynomial is built without coefficients.
	ErrEmptyPolynomial = errors.New("polynomial needs at least one coefficient")

	// ErrInvalidCoefficient is returned when a polynomial coefficient is NaN or infinite.
	ErrInvalidCoefficient = errors.New("invalid polynomial coefficient")

	// ErrInvalidCorrection is returned when a correction links a time scale to itself.
	ErrInvalidCorrection = errors.New("invalid time correction")
)
