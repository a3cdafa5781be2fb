package runlog

import (
	"context"
	"fmt"

	"github.com/Bochyn/Image-to-video/internal/config"
)

// Store is an ordered, append-only list of finished records.
type Store interface {
	// Load returns all records in append order. A missing or unreadable
	// backing file reads as empty.
	Load(ctx context.Context) ([]Record, error)
	// Append adds rec after every existing record without touching them.
	Append(ctx context.Context, rec Record) error
	Close() error
}

// Open returns the store selected by cfg.
func Open(cfg config.RunLog) (Store, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		return NewJSONStore(cfg.Path), nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("runlog: unknown backend %q", cfg.Backend)
	}
}
