package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides: COMPANION_PORT -> port.
const EnvPrefix = "COMPANION_"

type Config struct {
	Port string `koanf:"port"`

	// Auth. Empty disables bearer-token checks.
	APIKey string `koanf:"api_key"`

	// CORS origins allowed to call the API from a browser.
	CORSOrigins []string `koanf:"cors_origins"`

	// Companion build options
	Access                 bool   `koanf:"access"`
	SupplementaryImageBase string `koanf:"supplementary_image_base"`

	// Upload limits
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// Session state
	SessionTTL  time.Duration `koanf:"session_ttl"`
	MaxSessions int           `koanf:"max_sessions"`

	LogLevel string `koanf:"log_level"`
}

// DefaultCORSOrigins is used when cors_origins is unset.
var DefaultCORSOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}

// Defaults returns the configuration used when no file or env override
// sets a key.
func Defaults() Config {
	return Config{
		Port:           "8090",
		MaxUploadBytes: 10485760, // 10MB
		SessionTTL:     30 * time.Minute,
		MaxSessions:    256,
		LogLevel:       "info",
	}
}

// Load reads the optional YAML file at path, then overlays COMPANION_*
// environment variables. A missing file is not an error.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return cfg, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return cfg, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshalling config: %w", err)
	}

	def := Defaults()
	if cfg.Port == "" {
		cfg.Port = def.Port
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = def.SessionTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = def.MaxSessions
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = DefaultCORSOrigins
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if strings.ContainsAny(c.Port, " /") {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	return nil
}

// Level returns the slog level for LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", s)
	}
	return lvl, nil
}
