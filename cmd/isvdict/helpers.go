package main

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/isvdict/internal/config"
	"github.com/at-ishikawa/isvdict/internal/database"
	"github.com/at-ishikawa/isvdict/internal/dictionary"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore returns the cache store for the configured backend and a function releasing it.
func openStore(ctx context.Context, cfg config.CacheConfig) (dictionary.Store, func() error, error) {
	if cfg.Backend == config.BackendFile {
		return dictionary.NewFileCache(cfg.Directory), func() error { return nil }, nil
	}

	db, location, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open > %w", err)
	}
	if err := database.Ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("database.Ping(%s) > %w", location, err)
	}
	store := dictionary.NewDBStore(db, location)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("store.Migrate > %w", err)
	}
	return store, db.Close, nil
}
