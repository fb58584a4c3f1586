package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/artpar/shipit/internal/core/deployment"
	"github.com/artpar/shipit/internal/shell/render"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Convert ConvertConfig `mapstructure:"convert"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ConvertConfig holds conversion defaults shared by the CLI and the API.
type ConvertConfig struct {
	Mode  string `mapstructure:"mode"`
	Order string `mapstructure:"order"`

	// Format and OutputDir only apply to the convert command.
	Format    string `mapstructure:"format"`
	OutputDir string `mapstructure:"output_dir"`

	// Concurrency bounds how many services convert in parallel. One or less
	// converts sequentially.
	Concurrency int `mapstructure:"concurrency"`
}

// Validate checks the enumerated conversion settings.
func (c *Config) Validate() error {
	if _, err := deployment.ParseMode(c.Convert.Mode); err != nil {
		return fmt.Errorf("convert.mode: %w", err)
	}
	if _, err := deployment.ParseOrder(c.Convert.Order); err != nil {
		return fmt.Errorf("convert.order: %w", err)
	}
	if _, err := render.ParseFormat(c.Convert.Format); err != nil {
		return fmt.Errorf("convert.format: %w", err)
	}
	return nil
}

// =============================================================================
// Config Loading
// =============================================================================

// flagKeys maps command-line flag names to config keys. A flag only wins
// over file and environment values when it is set explicitly.
var flagKeys = map[string]string{
	"host":        "server.host",
	"port":        "server.port",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"mode":        "convert.mode",
	"order":       "convert.order",
	"format":      "convert.format",
	"output-dir":  "convert.output_dir",
	"concurrency": "convert.concurrency",
}

// LoadConfig loads configuration from file, environment and flags. flags may
// be nil.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("convert.mode", string(deployment.ModeConfig))
	v.SetDefault("convert.order", string(deployment.OrderDeclared))
	v.SetDefault("convert.format", string(render.FormatYAML))
	v.SetDefault("convert.output_dir", "")
	v.SetDefault("convert.concurrency", 4)

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("SHIPIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format. Logs go
// to w so that rendered templates on stdout stay clean.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
