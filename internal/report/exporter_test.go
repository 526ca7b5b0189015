package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yildizm/LeafScan/internal/diagnosis"
)

type stubGenerator struct {
	data  []byte
	err   error
	calls int
	got   *diagnosis.Result
}

func (s *stubGenerator) GenerateReport(ctx context.Context, result *diagnosis.Result) ([]byte, error) {
	s.calls++
	s.got = result
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

var sampleResult = &diagnosis.Result{Crop: "Tomato", Status: diagnosis.StatusHealthy, Disease: "None", Severity: "Low", Confidence: 0.97, Advice: "Keep monitoring"}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestExportWritesExactBytes(t *testing.T) {
	dir := t.TempDir()
	pdf := []byte("%PDF-1.3\n\x00\xffbody")
	gen := &stubGenerator{data: pdf}

	path, err := NewExporter(gen, Options{Dir: dir}, nil).Export(context.Background(), sampleResult)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if filepath.Base(path) != FileName {
		t.Errorf("expected %s, got %s", FileName, path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !bytes.Equal(got, pdf) {
		t.Error("expected saved report to contain exactly the returned bytes")
	}
	if gen.got != sampleResult {
		t.Error("expected the result to be passed through unchanged")
	}

	names := listDir(t, dir)
	if len(names) != 1 {
		t.Errorf("expected only the report in the directory, got %v", names)
	}
}

func TestExportNilResult(t *testing.T) {
	gen := &stubGenerator{data: []byte("%PDF-")}

	_, err := NewExporter(gen, Options{Dir: t.TempDir()}, nil).Export(context.Background(), nil)
	if !errors.Is(err, diagnosis.ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("expected no request, got %d", gen.calls)
	}
}

func TestExportGeneratorError(t *testing.T) {
	dir := t.TempDir()
	gen := &stubGenerator{err: diagnosis.NewStatusError("/api/generate-report", 500, "boom")}

	_, err := NewExporter(gen, Options{Dir: dir}, nil).Export(context.Background(), sampleResult)
	if !diagnosis.IsServiceError(err) {
		t.Fatalf("expected service error, got %v", err)
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Errorf("expected nothing written, got %v", names)
	}
}

func TestExportDoesNotOverwriteByDefault(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("old"), 0o600); err != nil {
		t.Fatalf("failed to seed report: %v", err)
	}

	path, err := NewExporter(&stubGenerator{data: []byte("%PDF-new")}, Options{Dir: dir}, nil).Export(context.Background(), sampleResult)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if filepath.Base(path) != "crop_report (1).pdf" {
		t.Errorf("expected numbered file name, got %s", filepath.Base(path))
	}

	old, _ := os.ReadFile(filepath.Join(dir, FileName))
	if string(old) != "old" {
		t.Error("expected existing report to be kept")
	}
}

func TestExportOverwrite(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("old"), 0o600); err != nil {
		t.Fatalf("failed to seed report: %v", err)
	}

	path, err := NewExporter(&stubGenerator{data: []byte("%PDF-new")}, Options{Dir: dir, Overwrite: true}, nil).Export(context.Background(), sampleResult)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "%PDF-new" {
		t.Errorf("expected overwritten report, got %q", data)
	}
	for _, name := range listDir(t, dir) {
		if strings.HasSuffix(name, ".part") {
			t.Errorf("temporary object %s was not released", name)
		}
	}
}

func TestTargetPath(t *testing.T) {
	dir := t.TempDir()

	path, err := TargetPath(dir, false)
	if err != nil || path != filepath.Join(dir, FileName) {
		t.Fatalf("Expected %s, got %s (%v)", FileName, path, err)
	}

	if err := os.WriteFile(path, []byte("%PDF-"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if next, _ := TargetPath(dir, false); filepath.Base(next) != "crop_report (1).pdf" {
		t.Errorf("Expected next free name, got %s", next)
	}
	if same, _ := TargetPath(dir, true); same != path {
		t.Errorf("Expected overwrite to keep %s, got %s", path, same)
	}
}
