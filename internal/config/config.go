// Package config provides configuration management for browserd.
// It supports loading configuration from environment variables, a config
// file, and built-in defaults, in that precedence order (env wins).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration sections for browserd.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`

	Temperature  float64       `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	MaxSteps     int           `mapstructure:"max_steps"`
	SearchEngine string        `mapstructure:"search_engine"`
	Browser      BrowserConfig `mapstructure:"browser"`
}

// ServerConfig holds MCP HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"outputPath"`
}

// BrowserConfig holds Chromium launch configuration, mirroring the
// "browser" block documented in config.yaml.
type BrowserConfig struct {
	Headless        bool         `mapstructure:"headless"`
	DisableSecurity bool         `mapstructure:"disable_security"`
	Window          WindowConfig `mapstructure:"window"`
	ChromiumPath    string       `mapstructure:"chromium_path"`
}

// WindowConfig holds the Chromium viewport size.
type WindowConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// MaxTokensOrDefault returns MaxTokens, or 2048 if unset.
func (c *Config) MaxTokensOrDefault() int {
	if c.MaxTokens <= 0 {
		return 2048
	}
	return c.MaxTokens
}

// setDefaults configures default values for all configuration options,
// matching the literal defaults documented for config.yaml.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 9090)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.outputPath", "stdout")

	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_tokens", 2048)
	v.SetDefault("max_steps", 10)
	v.SetDefault("search_engine", "google")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_security", false)
	v.SetDefault("browser.window.width", 1280)
	v.SetDefault("browser.window.height", 720)
	v.SetDefault("browser.chromium_path", "")
}

// Load reads configuration from environment variables, config.yaml, and
// defaults. Environment variables use the BROWSERD_ prefix.
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath reads configuration from the given directory (if not
// empty), then the current directory and /etc/browserd/, plus defaults
// and env.
func LoadWithPath(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("BROWSERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("browser.chromium_path", "CHROMIUM_PATH")
	_ = v.BindEnv("logging.level", "BROWSERD_LOG_LEVEL")
	_ = v.BindEnv("server.port", "BROWSERD_PORT")

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/browserd/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate checks that configuration values are within sane bounds.
func validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, "logging.format must be one of: json, text, console")
	}

	if cfg.MaxSteps < 0 {
		errs = append(errs, "max_steps must be non-negative")
	}
	if cfg.Browser.Window.Width <= 0 || cfg.Browser.Window.Height <= 0 {
		errs = append(errs, "browser.window dimensions must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// VisionTimeout is the default deadline for a vision describe-image call.
const VisionTimeout = 30 * time.Second

// LLMTimeout is the default deadline for an agent-step LLM generation call.
const LLMTimeout = 120 * time.Second
