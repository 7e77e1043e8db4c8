// Package config provides configuration for the allocator CLI and server.
//
// Configuration can be loaded from:
//  1. YAML file (lotalloc.yaml), with ${VAR} expansion
//  2. Environment variables (LOTALLOC_*), which override the file
//
// Example usage:
//
//	cfg, err := config.LoadOrDefault("lotalloc.yaml")
//	cutoff := cfg.Allocation.PromotionCutoffDay
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Allocation AllocationConfig `yaml:"allocation"`
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// AllocationConfig holds the priority rule settings
type AllocationConfig struct {
	PromotionTag       string `yaml:"promotion_tag"`
	PromotionCutoffDay int    `yaml:"promotion_cutoff_day"`
}

// InputConfig holds settings for reading inventory and order files
type InputConfig struct {
	Encoding    string   `yaml:"encoding"` // utf-8 or shift-jis
	DateLayouts []string `yaml:"date_layouts"`
	Sheet       string   `yaml:"sheet"` // xlsx sheet name, first sheet when empty
}

// OutputConfig holds report rendering settings
type OutputConfig struct {
	Format     string `yaml:"format"`
	Dir        string `yaml:"dir"`
	SheetName  string `yaml:"sheet_name"`
	DateLayout string `yaml:"date_layout"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int   `yaml:"port"`
	MaxUploadMB int64 `yaml:"max_upload_mb"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
	Output string `yaml:"output"` // stdout, stderr or a file path
}

// DefaultDateLayouts are tried in order when parsing source dates
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
	"02-01-2006",
}

// Default returns the built-in configuration
func Default() *Config {
	layouts := make([]string, len(DefaultDateLayouts))
	copy(layouts, DefaultDateLayouts)

	return &Config{
		Allocation: AllocationConfig{
			PromotionTag:       "Promotion",
			PromotionCutoffDay: 15,
		},
		Input: InputConfig{
			Encoding:    "utf-8",
			DateLayouts: layouts,
		},
		Output: OutputConfig{
			Format:     "text",
			SheetName:  "Updated_DataFrame",
			DateLayout: "02-01-2006",
		},
		Server: ServerConfig{
			Port:        8080,
			MaxUploadMB: 32,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load reads and parses the config file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the file when it exists, otherwise defaults plus environment
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		cfg, err := Load(path)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := Default()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Allocation.PromotionTag == "" {
		return fmt.Errorf("allocation.promotion_tag cannot be empty")
	}
	if c.Allocation.PromotionCutoffDay < 0 || c.Allocation.PromotionCutoffDay > 31 {
		return fmt.Errorf("allocation.promotion_cutoff_day must be between 0 and 31, got %d",
			c.Allocation.PromotionCutoffDay)
	}
	switch strings.ToLower(c.Input.Encoding) {
	case "", "utf-8", "utf8", "shift-jis", "shift_jis", "sjis":
	default:
		return fmt.Errorf("unsupported input.encoding: %s", c.Input.Encoding)
	}
	if len(c.Input.DateLayouts) == 0 {
		return fmt.Errorf("input.date_layouts cannot be empty")
	}
	switch c.Output.Format {
	case "text", "json", "csv", "xlsx", "html":
	default:
		return fmt.Errorf("unsupported output.format: %s", c.Output.Format)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}
	return nil
}

// applyEnv overrides file values with LOTALLOC_* environment variables
func (c *Config) applyEnv() {
	c.Allocation.PromotionTag = getEnv("LOTALLOC_PROMOTION_TAG", c.Allocation.PromotionTag)
	c.Allocation.PromotionCutoffDay = getEnvInt("LOTALLOC_PROMOTION_CUTOFF_DAY", c.Allocation.PromotionCutoffDay)
	c.Input.Encoding = getEnv("LOTALLOC_INPUT_ENCODING", c.Input.Encoding)
	c.Output.Format = getEnv("LOTALLOC_OUTPUT_FORMAT", c.Output.Format)
	c.Output.Dir = getEnv("LOTALLOC_OUTPUT_DIR", c.Output.Dir)
	c.Server.Port = getEnvInt("LOTALLOC_PORT", c.Server.Port)
	c.Logging.Level = getEnv("LOTALLOC_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOTALLOC_LOG_FORMAT", c.Logging.Format)
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
