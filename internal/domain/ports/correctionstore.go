// Package ports defines interfaces for persistence and instrumentation.
package ports

import (
	"context"

	"github.com/ersonp/gnsstime/internal/domain/entities"
)

// CorrectionStore persists time corrections between runs.
type CorrectionStore interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// SaveCorrection inserts a correction or replaces the one with the same ID.
	SaveCorrection(ctx context.Context, correction *entities.StoredCorrection) error

	// FindCorrection finds a correction by ID. Returns nil if not found.
	FindCorrection(ctx context.Context, id string) (*entities.StoredCorrection, error)

	// ExistsByIDs reports which of the given IDs are already stored.
	ExistsByIDs(ctx context.Context, ids []string) (map[string]bool, error)

	// ListCorrections returns every correction in insertion order.
	ListCorrections(ctx context.Context) ([]entities.StoredCorrection, error)

	// DeleteCorrection deletes a correction by ID.
	DeleteCorrection(ctx context.Context, id string) error

	// DeleteCorrectionsBefore deletes corrections whose reference epoch reads
	// earlier than instant, and returns how many were removed.
	DeleteCorrectionsBefore(ctx context.Context, instant entities.Epoch) (int, error)

	// CountCorrections returns the number of stored corrections.
	CountCorrections(ctx context.Context) (int, error)

	// LogAction appends an entry to the audit log. correctionID may be empty
	// for actions touching several corrections.
	LogAction(ctx context.Context, action, correctionID string, details map[string]any) error

	// FindAuditLog returns the most recent audit entries, newest first.
	FindAuditLog(ctx context.Context, limit int) ([]entities.AuditEntry, error)
}
