package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DatasetsConfig holds named correction datasets (read/write). Each dataset
// has its own database, e.g. broadcast corrections kept apart from final
// products.
type DatasetsConfig struct {
	Datasets map[string]DatasetEntry `yaml:"datasets,omitempty"`
}

// DatasetEntry holds configuration for a specific dataset.
type DatasetEntry struct {
	Description string `yaml:"description,omitempty"`
	// StrictValidity, when set, overrides conversion.strict_validity.
	StrictValidity *bool `yaml:"strict_validity,omitempty"`
}

// LoadDatasets loads dataset configuration from the .gnsstime directory.
func LoadDatasets(basePath string) (*DatasetsConfig, error) {
	data, err := os.ReadFile(DatasetsFilePath(basePath))
	if os.IsNotExist(err) {
		return &DatasetsConfig{
			Datasets: make(map[string]DatasetEntry),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading datasets file: %w", err)
	}

	var cfg DatasetsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing datasets file: %w", err)
	}

	if cfg.Datasets == nil {
		cfg.Datasets = make(map[string]DatasetEntry)
	}

	return &cfg, nil
}

// Save writes the dataset configuration to the datasets file.
func (d *DatasetsConfig) Save(basePath string) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling datasets config: %w", err)
	}

	if err := os.WriteFile(DatasetsFilePath(basePath), data, 0600); err != nil {
		return fmt.Errorf("writing datasets file: %w", err)
	}

	return nil
}

// Add adds a dataset to the configuration.
func (d *DatasetsConfig) Add(name string, entry DatasetEntry) {
	if d.Datasets == nil {
		d.Datasets = make(map[string]DatasetEntry)
	}
	d.Datasets[name] = entry
}

// Remove removes a dataset from the configuration.
func (d *DatasetsConfig) Remove(name string) {
	if d.Datasets != nil {
		delete(d.Datasets, name)
	}
}

// Names returns the dataset names in sorted order.
func (d *DatasetsConfig) Names() []string {
	names := make([]string, 0, len(d.Datasets))
	for name := range d.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the configuration for a specific dataset.
func (d *DatasetsConfig) Get(name string) (*DatasetEntry, error) {
	if len(d.Datasets) == 0 {
		return nil, errors.New("no datasets configured")
	}

	entry, ok := d.Datasets[name]
	if !ok {
		names := d.Names()
		if len(names) > 5 {
			names = append(names[:5], "...")
		}
		return nil, fmt.Errorf("dataset %q not found (available: %s)", name, strings.Join(names, ", "))
	}

	return &entry, nil
}

// Exists checks if a dataset exists in the configuration.
func (d *DatasetsConfig) Exists(name string) bool {
	if d.Datasets == nil {
		return false
	}
	_, ok := d.Datasets[name]
	return ok
}
