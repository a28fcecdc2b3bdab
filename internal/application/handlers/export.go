package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/ersonp/gnsstime/internal/domain/services"
	"github.com/ersonp/gnsstime/internal/infrastructure/parsers"
)

// ExportHandler writes stored corrections in an importable format.
type ExportHandler struct {
	service *services.ConversionService
}

// NewExportHandler creates a new export handler.
func NewExportHandler(service *services.ConversionService) *ExportHandler {
	return &ExportHandler{
		service: service,
	}
}

// Handle writes every stored correction to w and returns how many were written.
func (h *ExportHandler) Handle(ctx context.Context, w io.Writer, format string) (int, error) {
	stored, err := h.service.Corrections(ctx)
	if err != nil {
		return 0, err
	}

	rows := make([]parsers.RawCorrection, len(stored))
	for i := range stored {
		rows[i] = services.ToRawCorrection(&stored[i])
	}

	if err := parsers.Write(w, format, rows); err != nil {
		return 0, fmt.Errorf("writing corrections: %w", err)
	}
	return len(rows), nil
}
