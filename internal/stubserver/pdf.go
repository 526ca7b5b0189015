package stubserver

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/yildizm/LeafScan/internal/diagnosis"
)

// ReportTitle heads every generated report
const ReportTitle = "Crop Health Diagnostic Report"

// RenderReport draws the diagnostic report for result as a PDF
func RenderReport(result *diagnosis.Result, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(now)
	pdf.SetTitle(ReportTitle, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	line := func(text string) {
		pdf.CellFormat(0, 10, tr(text), "", 1, "", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 16)
	line(ReportTitle)

	pdf.SetFont("Arial", "", 12)
	line("Date: " + now.Format("2006-01-02 15:04:05"))
	pdf.Ln(5)

	line("Crop: " + result.Crop)
	line("Status: " + string(result.Status))
	line("Disease: " + result.Disease)
	line("Severity: " + result.Severity)
	line("Confidence: " + ConfidencePercent(result.Confidence) + "%")
	pdf.Ln(5)

	pdf.MultiCell(0, 10, tr("Advice:\n"+result.Advice), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConfidencePercent rounds confidence*100 to two decimals, keeping at least one
// decimal digit: 0.97 -> "97.0", 0.87534 -> "87.53"
func ConfidencePercent(confidence float64) string {
	v := math.Round(confidence*100*100) / 100
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
