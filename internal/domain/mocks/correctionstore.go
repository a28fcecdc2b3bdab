// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/ersonp/gnsstime/internal/domain/entities"
)

// CorrectionStore is an in-memory implementation of ports.CorrectionStore.
type CorrectionStore struct {
	mu    sync.Mutex
	order []string
	byID  map[string]entities.StoredCorrection

	// Audit holds logged actions, oldest first.
	Audit []entities.AuditEntry

	// Err, when set, is returned by every operation.
	Err error

	// Call tracking
	SaveCallCount   int
	DeleteCallCount int
	Closed          bool
}

// NewCorrectionStore creates an empty mock store.
func NewCorrectionStore() *CorrectionStore {
	return &CorrectionStore{byID: make(map[string]entities.StoredCorrection)}
}

// EnsureSchema returns the configured error.
func (m *CorrectionStore) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close marks the store closed.
func (m *CorrectionStore) Close() error {
	m.Closed = true
	return nil
}

// SaveCorrection inserts or replaces a correction by ID.
func (m *CorrectionStore) SaveCorrection(_ context.Context, c *entities.StoredCorrection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCallCount++
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.byID[c.ID]; !ok {
		m.order = append(m.order, c.ID)
	}
	m.byID[c.ID] = *c
	return nil
}

// FindCorrection returns the correction with id, or nil.
func (m *CorrectionStore) FindCorrection(_ context.Context, id string) (*entities.StoredCorrection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// ExistsByIDs reports which IDs are stored.
func (m *CorrectionStore) ExistsByIDs(_ context.Context, ids []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	exists := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := m.byID[id]; ok {
			exists[id] = true
		}
	}
	return exists, nil
}

// ListCorrections returns corrections in insertion order.
func (m *CorrectionStore) ListCorrections(_ context.Context) ([]entities.StoredCorrection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.StoredCorrection, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.byID[id])
	}
	return result, nil
}

// DeleteCorrection removes a correction by ID.
func (m *CorrectionStore) DeleteCorrection(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.removeLocked(id)
	return nil
}

// DeleteCorrectionsBefore removes corrections whose reference reads earlier than instant.
func (m *CorrectionStore) DeleteCorrectionsBefore(_ context.Context, instant entities.Epoch) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}
	var stale []string
	for _, id := range m.order {
		if m.byID[id].Correction.Reference().CompareNominal(instant) < 0 {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		m.removeLocked(id)
	}
	return len(stale), nil
}

// CountCorrections returns the number of stored corrections.
func (m *CorrectionStore) CountCorrections(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.order), nil
}

// LogAction appends an audit entry.
func (m *CorrectionStore) LogAction(_ context.Context, action, correctionID string, details map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:           int64(len(m.Audit) + 1),
		Action:       action,
		CorrectionID: correctionID,
		Details:      details,
		CreatedAt:    time.Now(),
	})
	return nil
}

// FindAuditLog returns up to limit entries, newest first.
func (m *CorrectionStore) FindAuditLog(_ context.Context, limit int) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0 && (limit <= 0 || len(result) < limit); i-- {
		result = append(result, m.Audit[i])
	}
	return result, nil
}

func (m *CorrectionStore) removeLocked(id string) {
	if _, ok := m.byID[id]; !ok {
		return
	}
	delete(m.byID, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
