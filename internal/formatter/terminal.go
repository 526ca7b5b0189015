package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/LeafScan/internal/emoji"
	"github.com/yildizm/LeafScan/internal/presenter"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts  *termfmt.TerminalOptions
	color bool
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	return &terminalFormatter{opts: opts, color: color}
}

func (f *terminalFormatter) Format(d *Diagnosis) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)

	if d == nil || d.Result == nil {
		b.WriteString(emoji.GetEmoji("info") + " No diagnosis yet\n")
		return []byte(b.String()), nil
	}

	f.writeResult(&b, d)
	f.writeAdvice(&b, d)

	if d.ReportPath != "" {
		fmt.Fprintf(&b, "\n%s Report saved to %s\n", emoji.GetEmoji("report"), d.ReportPath)
	}

	return []byte(b.String()), nil
}

// writeResult writes the diagnosis fields as a tree
func (f *terminalFormatter) writeResult(b *strings.Builder, d *Diagnosis) {
	p := presenter.Present(d.Result)

	status := getStatusEmoji(d.Result.Status) + " " + valueOr(p.Status, "Unknown")
	if f.color {
		status = lipgloss.NewStyle().Foreground(p.StatusColor).Bold(true).Render(status)
	}

	items := []termfmt.TreeItem{}
	if d.Image != "" {
		items = append(items, termfmt.TreeItem{Label: "Image", Value: d.Image})
	}
	items = append(items,
		termfmt.TreeItem{Label: "Crop", Value: valueOr(p.Crop, "-")},
		termfmt.TreeItem{Label: "Status", Value: status},
		termfmt.TreeItem{Label: "Disease", Value: valueOr(p.Disease, "-")},
		termfmt.TreeItem{Label: "Severity", Value: valueOr(p.Severity, "-")},
		termfmt.TreeItem{
			Label: "Confidence",
			Value: p.ConfidenceLabel,
			Children: []termfmt.TreeItem{
				{Label: createConfidenceBar(p.Confidence), Value: ""},
			},
		},
	)
	if !d.Time.IsZero() {
		items = append(items, termfmt.TreeItem{Label: "Analyzed", Value: d.Time.Format(timestampFormat)})
	}
	items[len(items)-1].Last = true

	fmt.Fprintf(b, "%s Diagnosis\n", emoji.GetEmoji("leaf"))
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

// writeAdvice writes the treatment advice
func (f *terminalFormatter) writeAdvice(b *strings.Builder, d *Diagnosis) {
	if d.Result.Advice == "" {
		return
	}
	fmt.Fprintf(b, "%s Advice\n", emoji.GetEmoji("advice"))
	b.WriteString("• " + d.Result.Advice + "\n")
}

// writeHeader writes a header with box drawing
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "Crop Health Diagnosis"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}
