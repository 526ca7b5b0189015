package picker

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/yildizm/LeafScan/internal/diagnosis"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestSelectNilIsNoOp(t *testing.T) {
	p := New()

	img, err := p.Select(nil)
	if !errors.Is(err, diagnosis.ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	if img != nil {
		t.Error("expected nil image")
	}
	if p.Current() != nil {
		t.Error("expected no selection")
	}
	if p.LivePreviews() != 0 {
		t.Errorf("expected 0 live previews, got %d", p.LivePreviews())
	}
}

func TestSelectKeepsOneLivePreview(t *testing.T) {
	p := New()

	first, err := p.Select(NewImage("a.png", pngBytes(t, 4, 3)))
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if first.Preview() == nil || first.Preview().Released() {
		t.Fatal("expected a live preview after selection")
	}

	second, err := p.Select(NewImage("b.txt", []byte("not an image")))
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}

	if !first.Preview().Released() {
		t.Error("expected previous preview to be released")
	}
	if second.Preview().Released() {
		t.Error("expected current preview to be live")
	}
	if p.LivePreviews() != 1 {
		t.Errorf("expected exactly 1 live preview, got %d", p.LivePreviews())
	}
	if p.Current() != second {
		t.Error("expected second image to be current")
	}
}

func TestResetReleasesPreview(t *testing.T) {
	p := New()
	img, _ := p.Select(NewImage("a.png", pngBytes(t, 2, 2)))

	p.Reset()

	if !img.Preview().Released() {
		t.Error("expected preview to be released on reset")
	}
	if p.LivePreviews() != 0 {
		t.Errorf("expected 0 live previews, got %d", p.LivePreviews())
	}
	if p.Current() != nil {
		t.Error("expected selection to be cleared")
	}

	// releasing twice must not underflow the counter
	img.Preview().Release()
	if p.LivePreviews() != 0 {
		t.Errorf("expected 0 live previews after double release, got %d", p.LivePreviews())
	}
}

func TestPreviewDimensions(t *testing.T) {
	p := New()
	img, _ := p.Select(NewImage("leaf.png", pngBytes(t, 16, 9)))

	pv := img.Preview()
	if pv.Width != 16 || pv.Height != 9 {
		t.Errorf("expected 16x9, got %dx%d", pv.Width, pv.Height)
	}
	if pv.Format != "png" {
		t.Errorf("expected png format, got %q", pv.Format)
	}
	if pv.ContentType != "image/png" {
		t.Errorf("expected image/png content type, got %q", pv.ContentType)
	}
	if pv.ID == "" {
		t.Error("expected preview id")
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaf.png")
	data := pngBytes(t, 3, 3)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	img, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if img.Name != "leaf.png" {
		t.Errorf("expected name leaf.png, got %s", img.Name)
	}
	if !bytes.Equal(img.Data, data) {
		t.Error("expected bytes to match file content")
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int]string{
		512:         "512 B",
		2048:        "2.0 KB",
		5 * 1 << 20: "5.0 MB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %s, want %s", in, got, want)
		}
	}
}
