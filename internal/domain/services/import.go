package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/gnsstime/internal/domain/entities"
	"github.com/ersonp/gnsstime/internal/domain/ports"
	"github.com/ersonp/gnsstime/internal/infrastructure/parsers"
)

// ConflictStrategy defines how to handle existing corrections during import.
type ConflictStrategy string

const (
	// ConflictSkip skips corrections that already exist (by ID).
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite overwrites existing corrections with new data.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle existing corrections
	Origin     string           // Default origin for rows without one
}

// ImportError represents an error for a specific row during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []ImportError
}

// ImportService loads correction tables into a store.
type ImportService struct {
	store  ports.CorrectionStore
	logger *zap.Logger
}

// NewImportService creates a new import service.
func NewImportService(store ports.CorrectionStore, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		store:  store,
		logger: logger,
	}
}

// Import validates raw rows and saves the valid ones. Invalid rows are reported
// in the result and do not stop the import.
func (s *ImportService) Import(ctx context.Context, rows []parsers.RawCorrection, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	corrections, validationErrors := s.validate(rows, opts.Origin)
	result.Errors = validationErrors

	if len(corrections) == 0 {
		return result, nil
	}

	if opts.DryRun {
		result.Imported = len(corrections)
		return result, nil
	}

	imported, skipped, err := s.saveWithConflictHandling(ctx, corrections, opts.OnConflict)
	if err != nil {
		return nil, fmt.Errorf("saving corrections: %w", err)
	}

	result.Imported = imported
	result.Skipped = skipped

	if err := s.store.LogAction(ctx, entities.AuditImport, "", map[string]any{
		"imported": imported,
		"skipped":  skipped,
		"invalid":  len(result.Errors),
		"origin":   opts.Origin,
	}); err != nil {
		s.logger.Warn("audit log write failed", zap.String("action", entities.AuditImport), zap.Error(err))
	}

	s.logger.Info("corrections imported",
		zap.Int("imported", imported),
		zap.Int("skipped", skipped),
		zap.Int("invalid", len(result.Errors)),
	)
	return result, nil
}

func (s *ImportService) validate(rows []parsers.RawCorrection, defaultOrigin string) ([]entities.StoredCorrection, []ImportError) {
	valid := make([]entities.StoredCorrection, 0, len(rows))
	var errs []ImportError
	now := time.Now()

	for i := range rows {
		raw := &rows[i]
		lineNum := raw.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		correction, importErr := ValidateRawCorrection(raw, lineNum)
		if importErr != nil {
			errs = append(errs, *importErr)
			continue
		}

		id := raw.ID
		if id == "" {
			id = uuid.New().String()
		}
		origin := raw.Origin
		if origin == "" {
			origin = defaultOrigin
		}

		valid = append(valid, entities.StoredCorrection{
			ID:         id,
			Correction: correction,
			Origin:     origin,
			CreatedAt:  now,
		})
	}

	return valid, errs
}

// ValidateRawCorrection turns a raw row into a correction, or describes why it
// cannot.
func ValidateRawCorrection(raw *parsers.RawCorrection, lineNum int) (entities.TimeCorrection, *ImportError) {
	if raw.Source == "" {
		return entities.TimeCorrection{}, &ImportError{Line: lineNum, Field: "source", Message: "missing required field: source"}
	}
	if raw.Target == "" {
		return entities.TimeCorrection{}, &ImportError{Line: lineNum, Field: "target", Message: "missing required field: target"}
	}
	if raw.Reference == "" {
		return entities.TimeCorrection{}, &ImportError{Line: lineNum, Field: "reference", Message: "missing required field: reference"}
	}

	source, err := entities.ParseTimeScale(raw.Source)
	if err != nil {
		return entities.TimeCorrection{}, &ImportError{Line: lineNum, Field: "source", Value: raw.Source, Message: invalidScaleMessage(raw.Source)}
	}
	target, err := entities.ParseTimeScale(raw.Target)
	if err != nil {
		return entities.TimeCorrection{}, &ImportError{Line: lineNum, Field: "target", Value: raw.Target, Message: invalidScaleMessage(raw.Target)}
	}

	reference, err := parseReference(raw.Reference, source)
	if err != nil {
		return entities.TimeCorrection{}, &ImportError{Line: lineNum, Field: "reference", Value: raw.Reference, Message: err.Error()}
	}

	polynomial, err := entities.NewPolynomial(raw.Coefficients...)
	if err != nil {
		return entities.TimeCorrection{}, &ImportError{Line: lineNum, Field: "coefficients", Message: err.Error()}
	}

	correction, err := entities.NewTimeCorrection(source, target, reference, polynomial)
	if err != nil {
		return entities.TimeCorrection{}, &ImportError{Line: lineNum, Field: "target", Value: raw.Target, Message: err.Error()}
	}

	if raw.Validity != "" {
		validity, err := time.ParseDuration(raw.Validity)
		if err != nil || validity < 0 {
			return entities.TimeCorrection{}, &ImportError{
				Line:    lineNum,
				Field:   "validity",
				Value:   raw.Validity,
				Message: fmt.Sprintf("invalid validity %q (expected a positive duration such as 24h)", raw.Validity),
			}
		}
		correction = correction.WithValidity(entities.FromNanoseconds(validity.Nanoseconds()))
	}

	return correction, nil
}

// parseReference reads the reference epoch in the source scale. An explicit
// scale code must match the source.
func parseReference(text string, source entities.TimeScale) (entities.Epoch, error) {
	epoch, err := entities.ParseEpoch(text)
	if err == nil {
		if epoch.TimeScale() != source {
			return entities.Epoch{}, fmt.Errorf("reference epoch is in %s, expected the source scale %s", epoch.TimeScale(), source)
		}
		return epoch, nil
	}
	return entities.ParseEpochIn(text, source)
}

func invalidScaleMessage(value string) string {
	names := make([]string, 0, len(entities.AllTimeScales()))
	for _, ts := range entities.AllTimeScales() {
		names = append(names, ts.String())
	}
	return fmt.Sprintf("invalid time scale %q (valid: %s)", value, strings.Join(names, ", "))
}

func (s *ImportService) saveWithConflictHandling(ctx context.Context, corrections []entities.StoredCorrection, onConflict ConflictStrategy) (imported, skipped int, err error) {
	toSave := corrections
	if onConflict == ConflictSkip {
		toSave, skipped, err = s.filterExisting(ctx, corrections)
		if err != nil {
			return 0, 0, err
		}
	} else if err := s.preserveCreatedAt(ctx, corrections); err != nil {
		return 0, 0, err
	}

	for i := range toSave {
		if err := s.store.SaveCorrection(ctx, &toSave[i]); err != nil {
			return 0, 0, err
		}
	}
	return len(toSave), skipped, nil
}

// preserveCreatedAt keeps the original CreatedAt of corrections being overwritten.
func (s *ImportService) preserveCreatedAt(ctx context.Context, corrections []entities.StoredCorrection) error {
	for i := range corrections {
		existing, err := s.store.FindCorrection(ctx, corrections[i].ID)
		if err != nil {
			return fmt.Errorf("looking up existing corrections: %w", err)
		}
		if existing != nil {
			corrections[i].CreatedAt = existing.CreatedAt
		}
	}
	return nil
}

// filterExisting filters out corrections that are already stored.
func (s *ImportService) filterExisting(ctx context.Context, corrections []entities.StoredCorrection) ([]entities.StoredCorrection, int, error) {
	ids := make([]string, len(corrections))
	for i := range corrections {
		ids[i] = corrections[i].ID
	}

	exists, err := s.store.ExistsByIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("checking existing corrections: %w", err)
	}

	toSave := make([]entities.StoredCorrection, 0, len(corrections))
	var skipped int
	for i := range corrections {
		if exists[corrections[i].ID] {
			skipped++
		} else {
			toSave = append(toSave, corrections[i])
		}
	}

	return toSave, skipped, nil
}

// ToRawCorrection renders a stored correction as a row for export.
func ToRawCorrection(stored *entities.StoredCorrection) parsers.RawCorrection {
	c := stored.Correction
	row := parsers.RawCorrection{
		ID:           stored.ID,
		Source:       c.Source().String(),
		Target:       c.Target().String(),
		Reference:    c.Reference().String(),
		Coefficients: c.Polynomial().Coefficients(),
		Origin:       stored.Origin,
	}
	if c.Validity() != 0 {
		row.Validity = time.Duration(c.Validity()).String()
	}
	return row
}

