package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version string        `yaml:"version" json:"version"`
	Service ServiceConfig `yaml:"service" json:"service"`
	Report  ReportConfig  `yaml:"report" json:"report"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Watch   WatchConfig   `yaml:"watch" json:"watch"`
	Cache   CacheConfig   `yaml:"cache" json:"cache"`
}

// ServiceConfig configures the remote diagnosis service
type ServiceConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url"`     // scheme://host:port
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`       // per-request timeout
	UserAgent string        `yaml:"user_agent" json:"user_agent"` // User-Agent header
}

// ReportConfig configures where exported reports are saved
type ReportConfig struct {
	OutputDir string `yaml:"output_dir" json:"output_dir"` // download directory
	Overwrite bool   `yaml:"overwrite" json:"overwrite"`   // replace an existing crop_report.pdf
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat   string `yaml:"default_format" json:"default_format"`     // text|json|markdown
	ColorMode       string `yaml:"color_mode" json:"color_mode"`             // auto|always|never
	TimestampFormat string `yaml:"timestamp_format" json:"timestamp_format"` // time format string
}

// UIConfig configures the interactive terminal UI
type UIConfig struct {
	Theme string `yaml:"theme" json:"theme"` // default|high-contrast|minimal
}

// LogConfig configures structured logging
type LogConfig struct {
	Level string `yaml:"level" json:"level"` // debug|info|warn|error
	File  string `yaml:"file" json:"file"`   // empty writes to stderr
}

// WatchConfig configures directory watching
type WatchConfig struct {
	Extensions []string      `yaml:"extensions" json:"extensions"`
	Settle     time.Duration `yaml:"settle" json:"settle"` // quiet period before a new file is read
}

// CacheConfig configures the in-memory diagnosis cache
type CacheConfig struct {
	Size int `yaml:"size" json:"size"` // 0 disables caching
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Service: ServiceConfig{
			BaseURL:   "http://127.0.0.1:5000",
			Timeout:   60 * time.Second,
			UserAgent: "leafscan",
		},
		Report: ReportConfig{
			OutputDir: ".",
			Overwrite: false,
		},
		Output: OutputConfig{
			DefaultFormat:   "text",
			ColorMode:       "auto",
			TimestampFormat: "2006-01-02 15:04:05",
		},
		UI: UIConfig{
			Theme: "default",
		},
		Log: LogConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Extensions: []string{".jpg", ".jpeg", ".png", ".gif"},
			Settle:     500 * time.Millisecond,
		},
		Cache: CacheConfig{
			Size: 0,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServiceConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateUIConfig(); err != nil {
		return err
	}
	if err := c.validateLogConfig(); err != nil {
		return err
	}
	if err := c.validateWatchConfig(); err != nil {
		return err
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache size must be non-negative")
	}
	return nil
}

// validateServiceConfig validates service-related configuration
func (c *Config) validateServiceConfig() error {
	if c.Service.BaseURL != "" {
		u, err := url.Parse(c.Service.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("invalid service base_url: %s (must be an http or https URL)", c.Service.BaseURL)
		}
	}
	if c.Service.Timeout < 0 {
		return fmt.Errorf("service timeout must be non-negative")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

// validateUIConfig validates UI-related configuration
func (c *Config) validateUIConfig() error {
	if c.UI.Theme != "" {
		validThemes := map[string]bool{
			"default":       true,
			"high-contrast": true,
			"minimal":       true,
		}
		if !validThemes[c.UI.Theme] {
			return fmt.Errorf("invalid theme: %s (must be one of: default, high-contrast, minimal)", c.UI.Theme)
		}
	}
	return nil
}

// validateLogConfig validates logging configuration
func (c *Config) validateLogConfig() error {
	if c.Log.Level != "" {
		validLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLevels[strings.ToLower(c.Log.Level)] {
			return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.Log.Level)
		}
	}
	return nil
}

// validateWatchConfig validates watch-related configuration
func (c *Config) validateWatchConfig() error {
	for _, ext := range c.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid watch extension: %s (must start with a dot)", ext)
		}
	}
	if c.Watch.Settle < 0 {
		return fmt.Errorf("watch settle must be non-negative")
	}
	return nil
}
