package formatter

import (
	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/LeafScan/internal/diagnosis"
	"github.com/yildizm/LeafScan/internal/emoji"
)

// timestampFormat is shared by the text and markdown formatters
const timestampFormat = "2006-01-02 15:04:05"

// getStatusEmoji returns the symbol for a diagnosis status
func getStatusEmoji(status diagnosis.Status) string {
	return emoji.Status(status.IsHealthy())
}

// createConfidenceBar creates ASCII confidence bar using go-termfmt
func createConfidenceBar(confidence float64) string {
	opts := termfmt.DefaultOptions()
	return termfmt.CreateConfidenceBar(confidence, opts)
}

// valueOr substitutes a placeholder for empty service fields
func valueOr(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
