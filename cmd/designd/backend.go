package main

import (
	"fmt"

	"github.com/fyrsmithlabs/designd/internal/config"
	"github.com/fyrsmithlabs/designd/internal/memory"
)

// openBackend constructs the configured memory backend. The returned close
// function is a no-op for backends without resources to release.
func openBackend(cfg config.MemoryConfig) (memory.Backend, func() error, error) {
	switch cfg.Backend {
	case config.BackendFile:
		b, err := memory.NewFileBackend(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return b, func() error { return nil }, nil
	case config.BackendSQLite:
		b, err := memory.NewSQLiteBackend(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown memory backend %q", cfg.Backend)
	}
}
