package formatter

import (
	"encoding/json"
	"time"

	"github.com/yildizm/LeafScan/internal/diagnosis"
	"github.com/yildizm/LeafScan/internal/presenter"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// JSONOutput is the document written by the json formatter
type JSONOutput struct {
	Image      string            `json:"image,omitempty"`
	Timestamp  *time.Time        `json:"timestamp,omitempty"`
	Result     *diagnosis.Result `json:"result"`
	Display    *DisplayOutput    `json:"display,omitempty"`
	ReportPath string            `json:"report_path,omitempty"`
}

// DisplayOutput carries the derived presentation values
type DisplayOutput struct {
	Healthy         bool   `json:"healthy"`
	StatusColor     string `json:"status_color"`
	ConfidenceLabel string `json:"confidence_label"`
	BarWidth        int    `json:"bar_width"`
}

func (f *jsonFormatter) Format(d *Diagnosis) ([]byte, error) {
	output := &JSONOutput{}
	if d != nil {
		output.Image = d.Image
		output.Result = d.Result
		output.ReportPath = d.ReportPath
		if !d.Time.IsZero() {
			ts := d.Time
			output.Timestamp = &ts
		}
		if d.Result != nil {
			p := presenter.Present(d.Result)
			output.Display = &DisplayOutput{
				Healthy:         p.Healthy,
				StatusColor:     string(p.StatusColor),
				ConfidenceLabel: p.ConfidenceLabel,
				BarWidth:        p.BarWidth,
			}
		}
	}

	return json.MarshalIndent(output, "", "  ")
}
