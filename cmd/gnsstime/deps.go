package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ersonp/gnsstime/internal/application/handlers"
	"github.com/ersonp/gnsstime/internal/domain/entities"
	"github.com/ersonp/gnsstime/internal/domain/ports"
	"github.com/ersonp/gnsstime/internal/domain/services"
	"github.com/ersonp/gnsstime/internal/infrastructure/config"
	"github.com/ersonp/gnsstime/internal/infrastructure/logging"
	"github.com/ersonp/gnsstime/internal/infrastructure/metrics"
	"github.com/ersonp/gnsstime/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config            *config.Config
	Logger            *zap.Logger
	ConvertHandler    *handlers.ConvertHandler
	CorrectionHandler *handlers.CorrectionHandler
	ImportHandler     *handlers.ImportHandler
	ExportHandler     *handlers.ExportHandler
}

// internalDeps holds all dependencies including low-level components.
// Used internally by helper functions.
type internalDeps struct {
	Deps
	metrics     *metrics.Metrics
	conversions *services.ConversionService
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	return withInternalDeps(ctx, func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
func withInternalDeps(ctx context.Context, fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	opts, err := conversionOptions(cwd, cfg)
	if err != nil {
		return err
	}

	dbPath := cfg.DatabasePath(cwd, globalDataset)
	store, err := openSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	m := metrics.NewMetrics()
	conversions := services.NewConversionService(store, m, logger, opts)
	if err := conversions.Load(ctx); err != nil {
		return fmt.Errorf("loading corrections: %w", err)
	}

	defaultTarget := entities.GPST
	if cfg.Conversion.DefaultTarget != "" {
		// Already validated by config.Load.
		defaultTarget, _ = entities.ParseTimeScale(cfg.Conversion.DefaultTarget)
	}

	logger.Debug("dependencies ready",
		zap.String("dataset", globalDataset),
		zap.String("database", dbPath),
		zap.Bool("strict_validity", opts.StrictValidity),
	)

	deps := &internalDeps{
		Deps: Deps{
			Config:            cfg,
			Logger:            logger,
			ConvertHandler:    handlers.NewConvertHandler(conversions, defaultTarget),
			CorrectionHandler: handlers.NewCorrectionHandler(conversions),
			ImportHandler:     handlers.NewImportHandler(services.NewImportService(store, logger), conversions),
			ExportHandler:     handlers.NewExportHandler(conversions),
		},
		metrics:     m,
		conversions: conversions,
	}

	return fn(deps)
}

// conversionOptions applies the selected dataset's overrides to the configured options.
func conversionOptions(basePath string, cfg *config.Config) (services.DBOptions, error) {
	opts := services.DBOptions{
		StrictValidity: cfg.Conversion.StrictValidity,
		PathCacheSize:  cfg.Conversion.PathCacheSize,
	}

	datasets, err := config.LoadDatasets(basePath)
	if err != nil {
		return opts, fmt.Errorf("loading datasets: %w", err)
	}
	entry, err := datasets.Get(globalDataset)
	if err != nil {
		return opts, err
	}
	if entry.StrictValidity != nil {
		opts.StrictValidity = *entry.StrictValidity
	}
	return opts, nil
}

// openSQLite opens the repository at path, creating its directory.
func openSQLite(path string) (*sqlite.Repository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	return sqlite.NewRepository(config.SQLiteConfig{Path: path})
}

// storeOpener adapts openSQLite for handlers that create datasets.
func storeOpener(path string) (ports.CorrectionStore, error) {
	return openSQLite(path)
}
