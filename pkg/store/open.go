package store

import (
	"fmt"
	"log/slog"

	"construct-hq/loom/pkg/config"
)

// Open builds the store selected by cfg. A watched file store is already
// watching when Open returns; Close stops it.
func Open(cfg config.StoreConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "memory":
		ms, err := NewMemoryStore(Records{})
		if err != nil {
			return nil, err
		}
		return ms, nil
	case "file":
		fs, err := NewFileStore(cfg.File.Path, logger)
		if err != nil {
			return nil, err
		}
		if cfg.File.Watch {
			if err := fs.Watch(cfg.File.DebounceInterval); err != nil {
				fs.Close()
				return nil, err
			}
		}
		return fs, nil
	case "sqlite":
		db, err := NewSQLiteStore(SQLiteConfig{
			Path:        cfg.SQLite.Path,
			Driver:      cfg.SQLite.Driver,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
