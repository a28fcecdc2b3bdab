package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ersonp/gnsstime/internal/domain/services"
	"github.com/ersonp/gnsstime/internal/infrastructure/parsers"
)

// ImportHandler handles importing correction tables from files.
type ImportHandler struct {
	service     *services.ImportService
	conversions *services.ConversionService
}

// NewImportHandler creates a new import handler. When conversions is not nil
// its snapshot is reloaded after every import that saved corrections.
func NewImportHandler(service *services.ImportService, conversions *services.ConversionService) *ImportHandler {
	return &ImportHandler{
		service:     service,
		conversions: conversions,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format     string                    // "json", "csv", or "auto"
	DryRun     bool                      // Validate without saving
	OnConflict services.ConflictStrategy // How to handle existing corrections
	Origin     string                    // Defaults to the file name
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []services.ImportError
}

// Handle imports corrections from a file.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*ImportResult, error) {
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	rows, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	if len(rows) == 0 {
		return &ImportResult{}, nil
	}

	origin := opts.Origin
	if origin == "" {
		origin = filepath.Base(filePath)
	}

	serviceResult, err := h.service.Import(ctx, rows, services.ImportOptions{
		DryRun:     opts.DryRun,
		OnConflict: opts.OnConflict,
		Origin:     origin,
	})
	if err != nil {
		return nil, err
	}

	if h.conversions != nil && !opts.DryRun && serviceResult.Imported > 0 {
		if err := h.conversions.Load(ctx); err != nil {
			return nil, fmt.Errorf("reloading corrections: %w", err)
		}
	}

	return &ImportResult{
		Imported: serviceResult.Imported,
		Skipped:  serviceResult.Skipped,
		Errors:   serviceResult.Errors,
	}, nil
}
