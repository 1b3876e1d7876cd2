package commands

import (
	"database/sql"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ailabeldev/ailabel/internal/config"
	"github.com/ailabeldev/ailabel/internal/dataset"
	"github.com/ailabeldev/ailabel/internal/lock"
	"github.com/ailabeldev/ailabel/internal/logging"
	"github.com/ailabeldev/ailabel/internal/predcache"
	"github.com/ailabeldev/ailabel/internal/storage"
)

// app bundles the open data store and its supporting pieces for one command
// invocation.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sql.DB
	lock   *lock.FileLock

	store *dataset.Store
	cache *predcache.Cache
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}
	l, err := lock.Acquire(filepath.Join(cfg.DataDir, "ailabel.lock"))
	if err != nil {
		return nil, err
	}
	db, err := storage.OpenDB(cfg.DataDir)
	if err != nil {
		_ = l.Release()
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		lock:   l,
		store:  dataset.NewStore(db, logger),
		cache:  predcache.New(db),
	}

	for _, init := range []func() error{
		a.store.Init,
		a.cache.Init,
	} {
		if err := init(); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	return a, nil
}

func (a *app) Close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.lock != nil {
		return a.lock.Release()
	}
	return nil
}
