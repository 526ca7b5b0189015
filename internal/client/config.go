package client

import (
	"net/url"
	"time"

	"github.com/yildizm/LeafScan/internal/diagnosis"
)

// Service paths
const (
	AnalyzePath = "/api/crop-diagnosis"
	ReportPath  = "/api/generate-report"
	HealthPath  = "/api/test"

	// ImageField is the multipart field carrying the image bytes
	ImageField = "image"
)

// Config holds diagnosis service client configuration
type Config struct {
	// BaseURL is the diagnosis service address
	BaseURL string `json:"base_url"`

	// Timeout for each HTTP request
	Timeout time.Duration `json:"timeout"`

	// UserAgent sent with every request
	UserAgent string `json:"user_agent"`
}

// DefaultConfig returns a default client configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "http://127.0.0.1:5000",
		Timeout:   60 * time.Second,
		UserAgent: "leafscan",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return diagnosis.NewServiceError(diagnosis.ErrTypeConfiguration, "base URL is required", "")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return diagnosis.NewServiceError(diagnosis.ErrTypeConfiguration, "base URL must be absolute: "+c.BaseURL, "")
	}

	if c.Timeout <= 0 {
		return diagnosis.NewServiceError(diagnosis.ErrTypeConfiguration, "timeout must be positive", "")
	}

	return nil
}
