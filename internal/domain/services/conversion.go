package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/gnsstime/internal/domain/entities"
	"github.com/ersonp/gnsstime/internal/domain/ports"
)

// Conversion failure reasons reported to metrics.
const (
	ReasonNoPath        = "no_path"
	ReasonScaleMismatch = "scale_mismatch"
	ReasonOther         = "other"
)

// ConversionService converts epochs against the corrections held in a store.
// Readers work on an immutable database snapshot; writes build a new snapshot
// and swap it in, so conversions never wait on a write.
type ConversionService struct {
	store   ports.CorrectionStore
	metrics ports.ConversionMetrics
	logger  *zap.Logger
	opts    DBOptions

	writeMu  sync.Mutex
	snapshot atomic.Pointer[TimeCorrectionsDB]
}

// NewConversionService creates a service with an empty snapshot. Call Load to
// read the store. metrics may be nil.
func NewConversionService(store ports.CorrectionStore, metrics ports.ConversionMetrics, logger *zap.Logger, opts DBOptions) *ConversionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ConversionService{
		store:   store,
		metrics: metrics,
		logger:  logger,
		opts:    opts,
	}
	s.snapshot.Store(NewTimeCorrectionsDB(logger, opts))
	return s
}

// Load rebuilds the snapshot from every stored correction.
func (s *ConversionService) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *ConversionService) reloadLocked(ctx context.Context) error {
	stored, err := s.store.ListCorrections(ctx)
	if err != nil {
		return fmt.Errorf("listing corrections: %w", err)
	}

	db := NewTimeCorrectionsDB(s.logger, s.opts)
	for i := range stored {
		db.Insert(stored[i].Correction)
	}
	s.swap(db)

	s.logger.Debug("corrections loaded", zap.Int("count", db.Len()))
	return nil
}

func (s *ConversionService) swap(db *TimeCorrectionsDB) {
	s.snapshot.Store(db)
	if s.metrics != nil {
		s.metrics.SetCorrections(db.Len())
	}
}

// Snapshot returns the database currently used for conversions.
func (s *ConversionService) Snapshot() *TimeCorrectionsDB {
	return s.snapshot.Load()
}

// Convert expresses epoch in target. An extrapolated result is returned without
// error; inspect Conversion.Warning.
func (s *ConversionService) Convert(epoch entities.Epoch, target entities.TimeScale) (*Conversion, error) {
	start := time.Now()

	conv, err := s.Snapshot().Convert(epoch, target)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveConversionError(epoch.TimeScale(), target, failureReason(err))
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveConversion(epoch.TimeScale(), target, len(conv.Hops), conv.Extrapolated, time.Since(start))
	}
	if warning := conv.Warning(); warning != nil {
		s.logger.Warn("extrapolated conversion",
			zap.Stringer("epoch", epoch),
			zap.Stringer("target", target),
			zap.Error(warning),
		)
	}

	return conv, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, entities.ErrNoConversionPath):
		return ReasonNoPath
	case errors.Is(err, entities.ErrScaleMismatch):
		return ReasonScaleMismatch
	default:
		return ReasonOther
	}
}

// AddCorrection persists a correction and makes it available to conversions.
func (s *ConversionService) AddCorrection(ctx context.Context, correction entities.TimeCorrection, origin string) (*entities.StoredCorrection, error) {
	stored := &entities.StoredCorrection{
		ID:         uuid.New().String(),
		Correction: correction,
		Origin:     origin,
		CreatedAt:  time.Now(),
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.SaveCorrection(ctx, stored); err != nil {
		return nil, fmt.Errorf("saving correction: %w", err)
	}

	db := NewTimeCorrectionsDB(s.logger, s.opts)
	db.Merge(s.Snapshot())
	db.Insert(correction)
	s.swap(db)

	s.audit(ctx, entities.AuditAdd, stored.ID, map[string]any{
		"correction": correction.String(),
		"origin":     origin,
	})
	s.logger.Info("correction added",
		zap.String("id", stored.ID),
		zap.Stringer("correction", correction),
	)
	return stored, nil
}

// RemoveCorrection deletes a stored correction. It reports false when no
// correction has that ID.
func (s *ConversionService) RemoveCorrection(ctx context.Context, id string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.store.FindCorrection(ctx, id)
	if err != nil {
		return false, fmt.Errorf("finding correction: %w", err)
	}
	if existing == nil {
		return false, nil
	}

	if err := s.store.DeleteCorrection(ctx, id); err != nil {
		return false, fmt.Errorf("deleting correction: %w", err)
	}
	if err := s.reloadLocked(ctx); err != nil {
		return false, err
	}

	s.audit(ctx, entities.AuditRemove, id, map[string]any{"correction": existing.Correction.String()})
	return true, nil
}

// Prune discards corrections whose reference epoch reads earlier than before,
// from the store and from the snapshot.
func (s *ConversionService) Prune(ctx context.Context, before entities.Epoch) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	removed, err := s.store.DeleteCorrectionsBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("pruning corrections: %w", err)
	}
	if err := s.reloadLocked(ctx); err != nil {
		return 0, err
	}

	s.audit(ctx, entities.AuditPrune, "", map[string]any{"before": before.String(), "removed": removed})
	s.logger.Info("corrections pruned", zap.Int("removed", removed), zap.Stringer("before", before))
	return removed, nil
}

// PruneWeekly discards corrections published more than a week before instant.
func (s *ConversionService) PruneWeekly(ctx context.Context, instant entities.Epoch) (int, error) {
	return s.Prune(ctx, instant.Add(-entities.Week))
}

// Corrections lists the stored corrections.
func (s *ConversionService) Corrections(ctx context.Context) ([]entities.StoredCorrection, error) {
	stored, err := s.store.ListCorrections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing corrections: %w", err)
	}
	return stored, nil
}

// History returns the most recent correction changes, newest first.
func (s *ConversionService) History(ctx context.Context, limit int) ([]entities.AuditEntry, error) {
	entries, err := s.store.FindAuditLog(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, nil
}

// audit records a change; a failed write is logged and otherwise ignored.
func (s *ConversionService) audit(ctx context.Context, action, correctionID string, details map[string]any) {
	if err := s.store.LogAction(ctx, action, correctionID, details); err != nil {
		s.logger.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}
