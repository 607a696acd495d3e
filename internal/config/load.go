package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config.yaml and from environment
// variables with a DOCSIFT_ prefix. Environment variables take precedence
// over values from the config file (DOCSIFT_SERVER_PORT overrides
// server.port). Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/docsift")

	v.SetEnvPrefix("DOCSIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment can carry
		// everything. Any other read error is fatal.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers defaults for settings that have sensible ones.
// Connection endpoints and credentials deliberately have none.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	// Empty defaults register the keys with viper so AutomaticEnv can bind
	// them during Unmarshal even when no config file is present.
	v.SetDefault("database.url", "")
	v.SetDefault("object_store.endpoint", "")
	v.SetDefault("object_store.access_key", "")
	v.SetDefault("object_store.secret_key", "")
	v.SetDefault("object_store.use_ssl", false)
	v.SetDefault("object_store.bucket", "")
	v.SetDefault("queue.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.io_timeout", "30s")
	v.SetDefault("queue.stream", "EXTRACTION")
	v.SetDefault("queue.subject", "extraction.tasks")
	v.SetDefault("task.expiration", "720h")
	v.SetDefault("task.sweep_interval", "5m")
	v.SetDefault("task.sweep_grace", "15m")
	v.SetDefault("task.sweep_batch", 100)
	v.SetDefault("upload.max_bytes", 100<<20)
}

// validate checks the unmarshalled config, including the cross-field rule
// that at least one authentication scheme is configured.
func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Auth.JWTSecret == "" && len(cfg.Auth.APIKeys) == 0 {
		return fmt.Errorf(
			"invalid configuration: auth requires a jwt_secret or at least one api key",
		)
	}

	return nil
}
