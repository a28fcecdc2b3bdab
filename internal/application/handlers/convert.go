package handlers

import (
	"fmt"
	"strings"

	"github.com/ersonp/gnsstime/internal/domain/entities"
	"github.com/ersonp/gnsstime/internal/domain/services"
)

// ConvertHandler handles epoch conversions.
type ConvertHandler struct {
	service       *services.ConversionService
	defaultTarget entities.TimeScale
}

// NewConvertHandler creates a new convert handler. defaultTarget is used when
// a request names no target.
func NewConvertHandler(service *services.ConversionService, defaultTarget entities.TimeScale) *ConvertHandler {
	return &ConvertHandler{
		service:       service,
		defaultTarget: defaultTarget,
	}
}

// ConvertRequest describes one conversion.
type ConvertRequest struct {
	// Epoch is "<date-time> <scale>", or a bare date-time when Scale is set.
	Epoch  string
	Scale  string
	Target string
}

// ConvertResult contains the result of a conversion.
type ConvertResult struct {
	Input      entities.Epoch
	Conversion *services.Conversion
}

// Warning returns the extrapolation advisory for the conversion, if any.
func (r *ConvertResult) Warning() error {
	return r.Conversion.Warning()
}

// Handle parses the request and converts the epoch.
func (h *ConvertHandler) Handle(req ConvertRequest) (*ConvertResult, error) {
	input, err := h.parseEpoch(req)
	if err != nil {
		return nil, err
	}

	target := h.defaultTarget
	if req.Target != "" {
		target, err = entities.ParseTimeScale(req.Target)
		if err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
	}
	if !target.IsValid() {
		return nil, fmt.Errorf("no target time scale given")
	}

	conv, err := h.service.Convert(input, target)
	if err != nil {
		return nil, fmt.Errorf("converting %s to %s: %w", input, target, err)
	}

	return &ConvertResult{
		Input:      input,
		Conversion: conv,
	}, nil
}

func (h *ConvertHandler) parseEpoch(req ConvertRequest) (entities.Epoch, error) {
	text := strings.TrimSpace(req.Epoch)
	if req.Scale == "" {
		return entities.ParseEpoch(text)
	}

	scale, err := entities.ParseTimeScale(req.Scale)
	if err != nil {
		return entities.Epoch{}, fmt.Errorf("scale: %w", err)
	}
	return entities.ParseEpochIn(text, scale)
}
