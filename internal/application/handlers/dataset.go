package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/gnsstime/internal/infrastructure/config"
)

// DatasetHandler manages named correction datasets.
type DatasetHandler struct {
	basePath  string
	openStore StoreOpener
}

// NewDatasetHandler creates a new dataset handler for the workspace at basePath.
func NewDatasetHandler(basePath string, openStore StoreOpener) *DatasetHandler {
	return &DatasetHandler{
		basePath:  basePath,
		openStore: openStore,
	}
}

// DatasetInfo describes one dataset.
type DatasetInfo struct {
	Name        string
	Description string
	Path        string
}

// List returns every configured dataset, sorted by name.
func (h *DatasetHandler) List() ([]DatasetInfo, error) {
	datasets, err := config.LoadDatasets(h.basePath)
	if err != nil {
		return nil, err
	}

	names := datasets.Names()
	result := make([]DatasetInfo, 0, len(names))
	for _, name := range names {
		entry := datasets.Datasets[name]
		result = append(result, DatasetInfo{
			Name:        name,
			Description: entry.Description,
			Path:        config.SQLitePathForDataset(h.basePath, name),
		})
	}
	return result, nil
}

// Create registers a dataset and creates its database.
func (h *DatasetHandler) Create(ctx context.Context, name, description string) (*DatasetInfo, error) {
	datasets, err := config.LoadDatasets(h.basePath)
	if err != nil {
		return nil, err
	}
	if datasets.Exists(name) {
		return nil, fmt.Errorf("dataset %q already exists", name)
	}

	path, err := createDatasetStore(ctx, h.openStore, config.SQLitePathForDataset(h.basePath, name))
	if err != nil {
		return nil, err
	}

	datasets.Add(name, config.DatasetEntry{Description: description})
	if err := datasets.Save(h.basePath); err != nil {
		return nil, err
	}

	return &DatasetInfo{Name: name, Description: description, Path: path}, nil
}

// Delete unregisters a dataset and removes its directory.
func (h *DatasetHandler) Delete(name string) error {
	if name == config.DefaultDataset {
		return fmt.Errorf("cannot delete the %q dataset", config.DefaultDataset)
	}

	datasets, err := config.LoadDatasets(h.basePath)
	if err != nil {
		return err
	}
	if _, err := datasets.Get(name); err != nil {
		return err
	}

	if err := os.RemoveAll(config.DatasetDir(h.basePath, name)); err != nil {
		return fmt.Errorf("removing dataset directory: %w", err)
	}

	datasets.Remove(name)
	return datasets.Save(h.basePath)
}
