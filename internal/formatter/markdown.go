package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/LeafScan/internal/presenter"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(d *Diagnosis) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Crop Health Diagnostic Report\n\n")

	if d == nil || d.Result == nil {
		b.WriteString("_No diagnosis available._\n")
		return []byte(b.String()), nil
	}

	if !d.Time.IsZero() {
		fmt.Fprintf(&b, "Generated: %s\n\n", d.Time.Format(timestampFormat))
	}
	if d.Image != "" {
		fmt.Fprintf(&b, "Image: `%s`\n\n", d.Image)
	}

	f.writeSummaryTable(&b, d)

	if d.Result.Advice != "" {
		b.WriteString("## Advice\n\n")
		fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(d.Result.Advice))
	}

	if d.ReportPath != "" {
		b.WriteString("## Report\n\n")
		fmt.Fprintf(&b, "PDF saved to `%s`\n", d.ReportPath)
	}

	return []byte(b.String()), nil
}

// writeSummaryTable writes the diagnosis fields as a table
func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, d *Diagnosis) {
	p := presenter.Present(d.Result)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	fmt.Fprintf(b, "| Crop | %s |\n", escapeMarkdown(valueOr(p.Crop, "-")))
	fmt.Fprintf(b, "| Status | %s %s |\n", getStatusEmoji(d.Result.Status), escapeMarkdown(valueOr(p.Status, "Unknown")))
	fmt.Fprintf(b, "| Disease | %s |\n", escapeMarkdown(valueOr(p.Disease, "-")))
	fmt.Fprintf(b, "| Severity | %s |\n", escapeMarkdown(valueOr(p.Severity, "-")))
	fmt.Fprintf(b, "| Confidence | %s |\n\n", p.ConfidenceLabel)
}

// escapeMarkdown keeps service text from breaking table cells
func escapeMarkdown(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}

