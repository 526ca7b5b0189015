package diagnosis

import "fmt"

// Status is the health verdict reported by the diagnosis service
type Status string

const (
	// StatusHealthy is the only status rendered with the healthy color
	StatusHealthy Status = "Healthy"

	// StatusUnhealthy is a generic non-healthy verdict
	StatusUnhealthy Status = "Unhealthy"

	// StatusDiseased is returned when a disease class was detected
	StatusDiseased Status = "Diseased"
)

// IsHealthy reports whether the status is exactly "Healthy"
func (s Status) IsHealthy() bool {
	return s == StatusHealthy
}

// Result is the structured diagnosis returned for one submitted image.
// It is treated as an immutable value: a new analyze call replaces it wholesale.
type Result struct {
	Crop       string  `json:"crop" yaml:"crop"`
	Status     Status  `json:"status" yaml:"status"`
	Disease    string  `json:"disease" yaml:"disease"`
	Severity   string  `json:"severity" yaml:"severity"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Advice     string  `json:"advice" yaml:"advice"`
}

// Validate checks the fields the client relies on for rendering
func (r *Result) Validate() error {
	if r == nil {
		return NewValidationError("result", "", "result is nil")
	}
	if r.Crop == "" {
		return NewValidationError("crop", "", "crop is required")
	}
	if r.Status == "" {
		return NewValidationError("status", "", "status is required")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return NewValidationError("confidence", fmt.Sprintf("%g", r.Confidence), "confidence must be between 0 and 1")
	}
	return nil
}

// Clone returns a copy so callers can hand results across goroutines safely
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// HealthResponse is the body returned by the service health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the error body the service returns with non-2xx codes
type ErrorResponse struct {
	Error string `json:"error"`
}
