// Package config provides configuration management for graintel services.
package config

import (
	"time"

	"github.com/graintel/graintel/internal/types"
)

// EngineConfig holds configuration for the extraction engine and its
// database-backed rule and lexicon sources.
type EngineConfig struct {
	DatabaseURL      string
	CacheTTL         time.Duration
	MaxDocumentBytes int
}

// DefaultEngineConfig returns configuration with default values.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		DatabaseURL:      "sqlite://graintel.db",
		CacheTTL:         5 * time.Minute,
		MaxDocumentBytes: types.MaxDocumentBytes,
	}
}
