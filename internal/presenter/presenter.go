// Package presenter derives display values from a diagnosis result.
package presenter

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/LeafScan/internal/diagnosis"
)

// Status color tokens
const (
	HealthyColor   = lipgloss.Color("#2ecc71")
	UnhealthyColor = lipgloss.Color("#e74c3c")
)

// Presentation holds everything needed to render one diagnosis
type Presentation struct {
	Crop     string
	Status   string
	Disease  string
	Severity string
	Advice   string

	Healthy     bool
	StatusColor lipgloss.Color

	// Confidence is the clamped ratio in [0,1]
	Confidence float64

	// ConfidenceLabel is confidence*100 with two decimals, e.g. "97.00%"
	ConfidenceLabel string

	// BarWidth is the rounded percentage used for the progress bar width
	BarWidth int
}

// Present maps a result to display values. It has no side effects; a nil result yields the zero Presentation.
func Present(result *diagnosis.Result) Presentation {
	if result == nil {
		return Presentation{}
	}

	confidence := clamp(result.Confidence)
	healthy := result.Status.IsHealthy()

	return Presentation{
		Crop:            result.Crop,
		Status:          string(result.Status),
		Disease:         result.Disease,
		Severity:        result.Severity,
		Advice:          result.Advice,
		Healthy:         healthy,
		StatusColor:     StatusColor(result.Status),
		Confidence:      confidence,
		ConfidenceLabel: ConfidenceLabel(confidence),
		BarWidth:        BarWidth(confidence),
	}
}

// StatusColor is a two-way choice: only "Healthy" gets the healthy color
func StatusColor(status diagnosis.Status) lipgloss.Color {
	if status.IsHealthy() {
		return HealthyColor
	}
	return UnhealthyColor
}

// ConfidenceLabel formats confidence as a percentage with two decimals
func ConfidenceLabel(confidence float64) string {
	return fmt.Sprintf("%.2f%%", clamp(confidence)*100)
}

// BarWidth returns the confidence percentage rounded to a whole number
func BarWidth(confidence float64) int {
	return int(math.Round(clamp(confidence) * 100))
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
