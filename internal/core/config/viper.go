package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*EngineConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultEngineConfig
	v.SetDefault("database.url", "sqlite://graintel.db")
	v.SetDefault("engine.cache_ttl", "5m")
	v.SetDefault("engine.max_document_bytes", 1024*1024)

	// Bind environment variables with GT_ prefix
	v.SetEnvPrefix("GT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject credentials in config files
	// Credentials must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &EngineConfig{
		DatabaseURL:      v.GetString("database.url"),
		CacheTTL:         v.GetDuration("engine.cache_ttl"),
		MaxDocumentBytes: v.GetInt("engine.max_document_bytes"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks URL scheme and positive TTL and document limit.
func validateConfig(cfg *EngineConfig) error {
	if !strings.HasPrefix(cfg.DatabaseURL, "sqlite://") && !strings.HasPrefix(cfg.DatabaseURL, "postgres://") {
		return fmt.Errorf("database.url must use sqlite:// or postgres:// scheme, got %q", cfg.DatabaseURL)
	}
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %v", cfg.CacheTTL)
	}
	if cfg.MaxDocumentBytes <= 0 {
		return fmt.Errorf("max_document_bytes must be positive, got %d", cfg.MaxDocumentBytes)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only credentials (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("database.password") {
		return fmt.Errorf("database credentials not allowed in config files (embed them in GT_DATABASE_URL instead)")
	}
	return nil
}
