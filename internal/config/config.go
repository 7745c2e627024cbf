// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

// Package config loads server configuration from defaults, an optional YAML
// file, and command-line flags, in that order of precedence. Secrets come
// from the environment only, never from files or flags.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Environment variables holding secrets.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvTokenSecret = "PLACEHUB_TOKEN_SECRET"
)

// Config is the full server configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Observability ObservabilityConfig `koanf:"observability"`
	Database      DatabaseConfig      `koanf:"-"`
	Auth          AuthConfig          `koanf:"auth"`
	Uploads       UploadsConfig       `koanf:"uploads"`
	Geocoder      GeocoderConfig      `koanf:"geocoder"`
	Log           LogConfig           `koanf:"log"`
}

// ServerConfig configures the public API server.
type ServerConfig struct {
	Addr           string   `koanf:"addr"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// ObservabilityConfig configures the metrics and health endpoint server.
type ObservabilityConfig struct {
	Addr string `koanf:"addr"`
}

// DatabaseConfig holds the connection string, environment-only.
type DatabaseConfig struct {
	URL string
}

// AuthConfig configures token issuance. The signing secret is
// environment-only.
type AuthConfig struct {
	TokenTTL time.Duration `koanf:"token_ttl"`
	Secret   string        `koanf:"-"`
}

// UploadsConfig configures image storage.
type UploadsConfig struct {
	Dir string `koanf:"dir"`
}

// GeocoderConfig configures the address resolution client.
type GeocoderConfig struct {
	BaseURL   string `koanf:"base_url"`
	UserAgent string `koanf:"user_agent"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":5000",
		},
		Observability: ObservabilityConfig{
			Addr: "127.0.0.1:9100",
		},
		Auth: AuthConfig{
			TokenTTL: time.Hour,
		},
		Uploads: UploadsConfig{
			Dir: "uploads/images",
		},
		Geocoder: GeocoderConfig{
			BaseURL:   "https://nominatim.openstreetmap.org",
			UserAgent: "placehub/1.0",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (when
// non-empty), then any flags set on the given flag set. DATABASE_URL and
// PLACEHUB_TOKEN_SECRET are read from the environment last.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_INVALID").With("path", path).Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
		}
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	cfg.Database.URL = os.Getenv(EnvDatabaseURL)
	cfg.Auth.Secret = os.Getenv(EnvTokenSecret)

	return cfg, nil
}

// Validate checks the settings a running server cannot do without.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_MISSING_DATABASE_URL").
			Errorf("%s environment variable is required", EnvDatabaseURL)
	}
	if c.Auth.Secret == "" {
		return oops.Code("CONFIG_MISSING_TOKEN_SECRET").
			Errorf("%s environment variable is required", EnvTokenSecret)
	}
	if c.Server.Addr == "" {
		return oops.Code("CONFIG_MISSING_ADDR").Errorf("server address is required")
	}
	if c.Uploads.Dir == "" {
		return oops.Code("CONFIG_MISSING_UPLOAD_DIR").Errorf("upload directory is required")
	}
	return nil
}
