// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/gnsstime/internal/domain/ports"
	"github.com/ersonp/gnsstime/internal/infrastructure/config"
)

// StoreOpener opens the correction store at a database path.
type StoreOpener func(path string) (ports.CorrectionStore, error)

// InitHandler handles workspace initialization.
type InitHandler struct {
	openStore StoreOpener
}

// NewInitHandler creates a new init handler.
func NewInitHandler(openStore StoreOpener) *InitHandler {
	return &InitHandler{
		openStore: openStore,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath   string
	DatabasePath string
}

// Handle writes the default configuration and creates the default dataset.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("gnsstime already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	datasets, err := config.LoadDatasets(basePath)
	if err != nil {
		return nil, err
	}
	datasets.Add(config.DefaultDataset, config.DatasetEntry{Description: "Default correction set"})
	if err := datasets.Save(basePath); err != nil {
		return nil, err
	}

	dbPath, err := createDatasetStore(ctx, h.openStore, cfg.DatabasePath(basePath, config.DefaultDataset))
	if err != nil {
		return nil, err
	}

	return &InitResult{
		ConfigPath:   config.ConfigFilePath(basePath),
		DatabasePath: dbPath,
	}, nil
}

// createDatasetStore opens the store at path once to create its schema.
func createDatasetStore(ctx context.Context, openStore StoreOpener, path string) (string, error) {
	store, err := openStore(path)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return "", fmt.Errorf("creating schema: %w", err)
	}
	return path, nil
}
