package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/gnsstime/internal/domain/entities"
	"github.com/ersonp/gnsstime/internal/domain/services"
	"github.com/ersonp/gnsstime/internal/infrastructure/parsers"
)

// CorrectionHandler handles correction management.
type CorrectionHandler struct {
	service *services.ConversionService
}

// NewCorrectionHandler creates a new correction handler.
func NewCorrectionHandler(service *services.ConversionService) *CorrectionHandler {
	return &CorrectionHandler{
		service: service,
	}
}

// AddRequest describes a correction to add. Fields use the import row format.
type AddRequest struct {
	Source       string
	Target       string
	Reference    string
	Coefficients []float64
	Validity     string
	Origin       string
}

// Add validates and stores a correction.
func (h *CorrectionHandler) Add(ctx context.Context, req AddRequest) (*entities.StoredCorrection, error) {
	raw := parsers.RawCorrection{
		Source:       req.Source,
		Target:       req.Target,
		Reference:    req.Reference,
		Coefficients: req.Coefficients,
		Validity:     req.Validity,
	}
	correction, importErr := services.ValidateRawCorrection(&raw, 0)
	if importErr != nil {
		return nil, fmt.Errorf("invalid %s: %s", importErr.Field, importErr.Message)
	}

	return h.service.AddCorrection(ctx, correction, req.Origin)
}

// List returns the stored corrections in insertion order.
func (h *CorrectionHandler) List(ctx context.Context) ([]entities.StoredCorrection, error) {
	return h.service.Corrections(ctx)
}

// Remove deletes a correction by ID.
func (h *CorrectionHandler) Remove(ctx context.Context, id string) error {
	removed, err := h.service.RemoveCorrection(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("correction %q not found", id)
	}
	return nil
}

// PruneRequest selects which corrections to discard.
type PruneRequest struct {
	// Before is the instant ("<date-time> <scale>"). Corrections whose
	// reference reads earlier are discarded.
	Before string
	// Weekly keeps the week preceding Before as well.
	Weekly bool
}

// Prune discards outdated corrections and reports how many were removed.
func (h *CorrectionHandler) Prune(ctx context.Context, req PruneRequest) (int, error) {
	instant, err := entities.ParseEpoch(req.Before)
	if err != nil {
		return 0, err
	}
	if req.Weekly {
		return h.service.PruneWeekly(ctx, instant)
	}
	return h.service.Prune(ctx, instant)
}

// History returns recent correction changes, newest first.
func (h *CorrectionHandler) History(ctx context.Context, limit int) ([]entities.AuditEntry, error) {
	return h.service.History(ctx, limit)
}

// Pairs returns the scale pairs the active database connects.
func (h *CorrectionHandler) Pairs() [][2]entities.TimeScale {
	return h.service.Snapshot().Pairs()
}
