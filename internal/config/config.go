// Package config provides configuration loading for designd.
package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/designd/internal/logging"
)

// Memory backend providers.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the full designd configuration.
type Config struct {
	Server  ServerConfig   `koanf:"server"`
	Memory  MemoryConfig   `koanf:"memory"`
	Logging logging.Config `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// MemoryConfig selects and locates the durable memory document.
type MemoryConfig struct {
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}
	if c.Memory.Backend != BackendFile && c.Memory.Backend != BackendSQLite {
		return fmt.Errorf("memory backend must be %q or %q, got %q", BackendFile, BackendSQLite, c.Memory.Backend)
	}
	if c.Memory.Path == "" {
		return fmt.Errorf("memory path cannot be empty")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
