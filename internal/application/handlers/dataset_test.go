package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/gnsstime/internal/domain/mocks"
	"github.com/ersonp/gnsstime/internal/infrastructure/config"
)

func TestDatasetHandler_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	var opened []string
	handler := NewDatasetHandler(tmpDir, mockOpener(mocks.NewCorrectionStore(), &opened))

	list, err := handler.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	info, err := handler.Create(context.Background(), "IGS Final", "final products")
	require.NoError(t, err)
	assert.Equal(t, config.SQLitePathForDataset(tmpDir, "IGS Final"), info.Path)
	assert.Equal(t, []string{info.Path}, opened)

	_, err = handler.Create(context.Background(), "IGS Final", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	list, err = handler.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "IGS Final", list[0].Name)
	assert.Equal(t, "final products", list[0].Description)

	// Simulate the database the opener would have created.
	require.NoError(t, os.MkdirAll(filepath.Dir(info.Path), 0o755))
	require.NoError(t, os.WriteFile(info.Path, nil, 0o600))

	require.NoError(t, handler.Delete("IGS Final"))
	_, err = os.Stat(config.DatasetDir(tmpDir, "IGS Final"))
	assert.True(t, os.IsNotExist(err))

	list, err = handler.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDatasetHandler_Delete_Errors(t *testing.T) {
	handler := NewDatasetHandler(t.TempDir(), mockOpener(mocks.NewCorrectionStore(), nil))

	err := handler.Delete(config.DefaultDataset)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot delete")

	err = handler.Delete("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no datasets configured")
}
