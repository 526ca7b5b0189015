package formatter

import (
	"fmt"
	"time"

	"github.com/yildizm/LeafScan/internal/diagnosis"
)

// Diagnosis is one rendered analysis: the image, its result and, once exported, the report path
type Diagnosis struct {
	Image      string
	Result     *diagnosis.Result
	ReportPath string
	Time       time.Time
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(d *Diagnosis) ([]byte, error)
}

// New returns the formatter for text, json or markdown output
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTerminal(color), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use text, json or markdown)", format)
	}
}
