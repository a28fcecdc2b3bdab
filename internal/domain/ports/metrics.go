package ports

import (
	"time"

	"github.com/ersonp/gnsstime/internal/domain/entities"
)

// ConversionMetrics records conversion outcomes.
type ConversionMetrics interface {
	// ObserveConversion records a successful conversion.
	ObserveConversion(source, target entities.TimeScale, hops int, extrapolated bool, elapsed time.Duration)

	// ObserveConversionError records a failed conversion, classified by reason.
	ObserveConversionError(source, target entities.TimeScale, reason string)

	// SetCorrections reports the number of corrections currently loaded.
	SetCorrections(n int)
}
