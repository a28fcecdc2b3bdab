package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ersonp/gnsstime/internal/domain/mocks"
	"github.com/ersonp/gnsstime/internal/domain/services"
)

func newConversionService(t *testing.T) (*services.ConversionService, *mocks.CorrectionStore) {
	t.Helper()
	store := mocks.NewCorrectionStore()
	return services.NewConversionService(store, nil, zap.NewNop(), services.DBOptions{PathCacheSize: services.DefaultPathCacheSize}), store
}

func addCorrection(t *testing.T, handler *CorrectionHandler, source, target, reference string, coefficients ...float64) string {
	t.Helper()
	stored, err := handler.Add(context.Background(), AddRequest{
		Source:       source,
		Target:       target,
		Reference:    reference,
		Coefficients: coefficients,
	})
	require.NoError(t, err)
	return stored.ID
}
