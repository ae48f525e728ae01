package config

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDatabasePath indicates a missing database location
	ErrEmptyDatabasePath = errors.New("empty database path")

	// ErrEmptyLibraryRoot indicates a missing library root
	ErrEmptyLibraryRoot = errors.New("empty library root")

	// ErrNoIncludePatterns indicates that no source patterns are configured
	ErrNoIncludePatterns = errors.New("no include patterns")

	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	if cfg.Database.Path == "" {
		return ErrEmptyDatabasePath
	}
	if cfg.Library.Root == "" {
		return ErrEmptyLibraryRoot
	}
	if len(cfg.Library.Include) == 0 {
		return ErrNoIncludePatterns
	}
	if cfg.Import.Workers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, cfg.Import.Workers)
	}
	return nil
}
