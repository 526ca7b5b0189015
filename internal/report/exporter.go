// Package report requests a PDF report for a diagnosis and saves it locally.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yildizm/LeafScan/internal/diagnosis"
	"github.com/yildizm/LeafScan/internal/logger"
)

// FileName is the name the report is saved under
const FileName = "crop_report.pdf"

var pdfMagic = []byte("%PDF-")

// Generator produces the binary report for a diagnosis
type Generator interface {
	GenerateReport(ctx context.Context, result *diagnosis.Result) ([]byte, error)
}

// Options configures where reports are saved
type Options struct {
	// Dir receives the report; empty means the current directory
	Dir string

	// Overwrite replaces an existing report instead of choosing "crop_report (n).pdf"
	Overwrite bool
}

// Exporter fetches reports and saves them as crop_report.pdf
type Exporter struct {
	generator Generator
	opts      Options
	logger    *zap.Logger
}

// NewExporter creates an exporter
func NewExporter(generator Generator, opts Options, log *zap.Logger) *Exporter {
	return &Exporter{
		generator: generator,
		opts:      opts,
		logger:    logger.OrNop(log).Named("report"),
	}
}

// Export posts the result and saves the returned bytes unchanged. It returns
// the saved path. A nil result returns diagnosis.ErrNoResult without any request.
func (e *Exporter) Export(ctx context.Context, result *diagnosis.Result) (string, error) {
	if result == nil {
		return "", diagnosis.ErrNoResult
	}

	data, err := e.generator.GenerateReport(ctx, result)
	if err != nil {
		return "", err
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		e.logger.Warn("report body does not look like a PDF", zap.Int("bytes", len(data)))
	}

	path, err := e.save(data)
	if err != nil {
		wrapped := logger.NewOperationError("report.save", "", err)
		e.logger.Error("failed to save report", zap.Error(wrapped))
		return "", wrapped
	}

	e.logger.Info("report saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

// save writes data to a temporary object, then moves it into place. The
// temporary object is released on every path.
func (e *Exporter) save(data []byte) (string, error) {
	dir := e.opts.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".crop_report-*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer e.release(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close report: %w", err)
	}

	target, err := TargetPath(dir, e.opts.Overwrite)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}
	return target, nil
}

// TargetPath returns where the next report in dir will be saved: crop_report.pdf,
// or the first free "crop_report (n).pdf" when not overwriting
func TargetPath(dir string, overwrite bool) (string, error) {
	if dir == "" {
		dir = "."
	}
	target := filepath.Join(dir, FileName)
	if overwrite || !exists(target) {
		return target, nil
	}

	ext := filepath.Ext(FileName)
	base := strings.TrimSuffix(FileName, ext)
	for n := 1; n < 1000; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free file name for %s in %s", FileName, dir)
}

// release removes the temporary object; after a successful rename it is already gone
func (e *Exporter) release(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		e.logger.Warn("failed to release temporary report", zap.String("path", path), zap.Error(err))
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
