package config

import (
	"testing"
	"time"
)

func TestTimeoutValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid timeouts",
			config: &Config{
				Service: ServiceConfig{Timeout: 5 * time.Second},
				Watch:   WatchConfig{Settle: 100 * time.Millisecond},
			},
			wantErr: false,
		},
		{
			name: "zero timeouts",
			config: &Config{
				Service: ServiceConfig{Timeout: 0},
				Watch:   WatchConfig{Settle: 0},
			},
			wantErr: false,
		},
		{
			name: "negative service timeout",
			config: &Config{
				Service: ServiceConfig{Timeout: -1 * time.Second},
			},
			wantErr: true,
			errMsg:  "service timeout must be non-negative",
		},
		{
			name: "negative settle",
			config: &Config{
				Watch: WatchConfig{Settle: -1 * time.Millisecond},
			},
			wantErr: true,
			errMsg:  "watch settle must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if err.Error() != tt.errMsg {
					t.Errorf("Expected error message %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestTimeoutEnvOverrides(t *testing.T) {
	t.Setenv("LEAFSCAN_SERVICE_TIMEOUT", "15s")
	t.Setenv("LEAFSCAN_WATCH_SETTLE", "2s")

	cfg := DefaultConfig()
	if err := NewLoader().applyEnvOverrides(cfg); err != nil {
		t.Fatalf("Failed to apply env overrides: %v", err)
	}

	if cfg.Service.Timeout != 15*time.Second {
		t.Errorf("Expected service timeout 15s, got %v", cfg.Service.Timeout)
	}
	if cfg.Watch.Settle != 2*time.Second {
		t.Errorf("Expected settle 2s, got %v", cfg.Watch.Settle)
	}
}

func TestInvalidTimeoutEnv(t *testing.T) {
	t.Setenv("LEAFSCAN_SERVICE_TIMEOUT", "soon")

	if err := NewLoader().applyEnvOverrides(DefaultConfig()); err == nil {
		t.Error("Expected error for invalid duration")
	}
}
