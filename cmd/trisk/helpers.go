package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"trisk/internal/catalog"
	"trisk/internal/config"
	"trisk/internal/history"
	"trisk/internal/logging"
)

var (
	storeOnce   sync.Once
	sharedStore *history.SQLiteStore
	storeErr    error
)

// getRoot returns the working directory all relative paths hang off.
func getRoot() (string, error) {
	return os.Getwd()
}

// mustGetRoot returns the working directory or exits on error.
func mustGetRoot() string {
	root, err := getRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return root
}

// loadConfig loads the configuration for root, falling back to defaults on
// load failure.
func loadConfig(root string, logger *logging.Logger) *config.Config {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		logger.Warn("Failed to load config, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return config.DefaultConfig()
	}
	return cfg
}

// getStore returns a shared history store, lazily opened on first use.
func getStore(root string, cfg *config.Config, logger *logging.Logger) (*history.SQLiteStore, error) {
	storeOnce.Do(func() {
		dataDir := cfg.DataDir
		if !filepath.IsAbs(dataDir) {
			dataDir = filepath.Join(root, dataDir)
		}
		limits := history.Limits{
			MaxRecords:    cfg.Analysis.MaxOverlapRecords,
			MaxSharedKeys: cfg.Analysis.MaxSharedObjects,
		}
		store, err := history.Open(dataDir, limits, logger)
		if err != nil {
			storeErr = fmt.Errorf("failed to open history store: %w", err)
			return
		}
		sharedStore = store
	})
	return sharedStore, storeErr
}

// mustGetStore returns the shared history store or exits on error.
func mustGetStore(root string, cfg *config.Config, logger *logging.Logger) *history.SQLiteStore {
	store, err := getStore(root, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return store
}

// loadCatalog resolves the catalog, preferring an explicit flag over the
// configured path, over the bundled default.
func loadCatalog(root, flagPath string, cfg *config.Config, logger *logging.Logger) *catalog.Catalog {
	path := flagPath
	if path == "" {
		path = cfg.Catalog.Path
	}
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return catalog.Load(path, logger)
}

// newLogger builds a logger from the configured format and level.
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.ParseFormat(cfg.Logging.Format),
		Level:  logging.ParseLevel(cfg.Logging.Level),
	})
}
