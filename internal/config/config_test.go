package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test that defaults are set correctly
	if cfg.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", cfg.Version)
	}

	if cfg.Service.BaseURL != "http://127.0.0.1:5000" {
		t.Errorf("Expected default base URL, got %s", cfg.Service.BaseURL)
	}

	if cfg.Service.Timeout != 60*time.Second {
		t.Errorf("Expected service timeout 60s, got %v", cfg.Service.Timeout)
	}

	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected output format text, got %s", cfg.Output.DefaultFormat)
	}

	if cfg.Report.Overwrite {
		t.Error("Expected overwrite disabled by default")
	}

	if cfg.Cache.Size != 0 {
		t.Errorf("Expected cache disabled by default, got %d", cfg.Cache.Size)
	}

	if len(cfg.Watch.Extensions) != 4 {
		t.Errorf("Expected 4 watch extensions, got %d", len(cfg.Watch.Extensions))
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "empty config",
			config:  &Config{},
			wantErr: false,
		},
		{
			name: "invalid base url",
			config: &Config{
				Service: ServiceConfig{BaseURL: "127.0.0.1:5000"},
			},
			wantErr: true,
			errMsg:  "invalid service base_url: 127.0.0.1:5000 (must be an http or https URL)",
		},
		{
			name: "invalid output format",
			config: &Config{
				Output: OutputConfig{DefaultFormat: "csv"},
			},
			wantErr: true,
			errMsg:  "invalid output format: csv (must be one of: json, text, markdown)",
		},
		{
			name: "invalid color mode",
			config: &Config{
				Output: OutputConfig{ColorMode: "invalid"},
			},
			wantErr: true,
			errMsg:  "invalid color mode: invalid (must be one of: auto, always, never)",
		},
		{
			name: "invalid theme",
			config: &Config{
				UI: UIConfig{Theme: "neon"},
			},
			wantErr: true,
			errMsg:  "invalid theme: neon (must be one of: default, high-contrast, minimal)",
		},
		{
			name: "invalid log level",
			config: &Config{
				Log: LogConfig{Level: "loud"},
			},
			wantErr: true,
			errMsg:  "invalid log level: loud (must be one of: debug, info, warn, error)",
		},
		{
			name: "extension without dot",
			config: &Config{
				Watch: WatchConfig{Extensions: []string{"jpg"}},
			},
			wantErr: true,
			errMsg:  "invalid watch extension: jpg (must start with a dot)",
		},
		{
			name: "negative cache size",
			config: &Config{
				Cache: CacheConfig{Size: -1},
			},
			wantErr: true,
			errMsg:  "cache size must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if tt.errMsg != "" && err.Error() != tt.errMsg {
					t.Errorf("Expected error message %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestSampleConfigsParse(t *testing.T) {
	for name, content := range map[string]string{
		"full":    SampleConfig(),
		"minimal": MinimalSampleConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			var cfg Config
			if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
				t.Fatalf("Sample config does not parse: %v", err)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Sample config does not validate: %v", err)
			}
			if cfg.Service.BaseURL != "http://127.0.0.1:5000" {
				t.Errorf("Expected sample base URL, got %s", cfg.Service.BaseURL)
			}
		})
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(SampleConfig()), &cfg); err != nil {
		t.Fatalf("Sample config does not parse: %v", err)
	}
	def := DefaultConfig()
	if cfg.Watch.Settle != def.Watch.Settle {
		t.Errorf("Expected settle %v, got %v", def.Watch.Settle, cfg.Watch.Settle)
	}
	if cfg.Service.Timeout != def.Service.Timeout {
		t.Errorf("Expected timeout %v, got %v", def.Service.Timeout, cfg.Service.Timeout)
	}
}
