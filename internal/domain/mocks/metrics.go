package mocks

import (
	"sync"
	"time"

	"github.com/ersonp/gnsstime/internal/domain/entities"
)

// ConversionRecord captures one ObserveConversion call.
type ConversionRecord struct {
	Source       entities.TimeScale
	Target       entities.TimeScale
	Hops         int
	Extrapolated bool
}

// ConversionMetrics records calls to ports.ConversionMetrics.
type ConversionMetrics struct {
	mu sync.Mutex

	Conversions []ConversionRecord
	Errors      []string
	Corrections int
}

// ObserveConversion records a successful conversion.
func (m *ConversionMetrics) ObserveConversion(source, target entities.TimeScale, hops int, extrapolated bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Conversions = append(m.Conversions, ConversionRecord{
		Source:       source,
		Target:       target,
		Hops:         hops,
		Extrapolated: extrapolated,
	})
}

// ObserveConversionError records a failed conversion reason.
func (m *ConversionMetrics) ObserveConversionError(_, _ entities.TimeScale, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, reason)
}

// SetCorrections records the loaded correction count.
func (m *ConversionMetrics) SetCorrections(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Corrections = n
}
