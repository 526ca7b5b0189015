// Package picker owns the currently selected leaf image and its preview reference.
package picker

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register decoder for preview dimensions
	_ "image/jpeg" // register decoder for preview dimensions
	_ "image/png"  // register decoder for preview dimensions
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/yildizm/LeafScan/internal/diagnosis"
)

// Image is a selected image file: opaque bytes plus the preview allocated for it
type Image struct {
	Name        string
	Data        []byte
	ContentType string

	preview *Preview
}

// NewImage wraps raw bytes as a selectable image
func NewImage(name string, data []byte) *Image {
	return &Image{
		Name:        name,
		Data:        data,
		ContentType: http.DetectContentType(data),
	}
}

// Open reads an image from disk. The content is not validated.
func Open(path string) (*Image, error) {
	// #nosec G304 - the user explicitly chooses the file to upload
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return NewImage(filepath.Base(path), data), nil
}

// Preview returns the preview reference, nil until the image is selected
func (i *Image) Preview() *Preview {
	if i == nil {
		return nil
	}
	return i.preview
}

// Size returns the image size in bytes
func (i *Image) Size() int {
	if i == nil {
		return 0
	}
	return len(i.Data)
}

// Preview is a revocable local handle used to render a selected image
type Preview struct {
	ID          string
	Name        string
	Size        int
	ContentType string
	Format      string
	Width       int
	Height      int

	released atomic.Bool
	onRelease func()
}

// Released reports whether the preview has been revoked
func (p *Preview) Released() bool {
	return p == nil || p.released.Load()
}

// Release revokes the preview; calling it more than once is a no-op
func (p *Preview) Release() {
	if p == nil {
		return
	}
	if p.released.CompareAndSwap(false, true) && p.onRelease != nil {
		p.onRelease()
	}
}

// Summary describes the preview in one line
func (p *Preview) Summary() string {
	if p.Released() {
		return "No image selected"
	}
	size := formatBytes(p.Size)
	if p.Width > 0 && p.Height > 0 {
		return fmt.Sprintf("%s  %dx%d %s  %s", p.Name, p.Width, p.Height, p.Format, size)
	}
	return fmt.Sprintf("%s  %s  %s", p.Name, p.ContentType, size)
}

// Picker holds at most one selected image and at most one live preview
type Picker struct {
	mu      sync.Mutex
	current *Image
	live    atomic.Int64
}

// New creates an empty picker
func New() *Picker {
	return &Picker{}
}

// Select makes img the current selection. A nil image is a no-op that
// returns diagnosis.ErrNoImage so the caller can warn the user.
func (p *Picker) Select(img *Image) (*Image, error) {
	if img == nil {
		return nil, diagnosis.ErrNoImage
	}

	preview := p.newPreview(img)

	p.mu.Lock()
	previous := p.current
	selected := &Image{
		Name:        img.Name,
		Data:        img.Data,
		ContentType: img.ContentType,
		preview:     preview,
	}
	p.current = selected
	p.mu.Unlock()

	if previous != nil {
		previous.preview.Release()
	}

	return selected, nil
}

// Current returns the selected image or nil
func (p *Picker) Current() *Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Reset clears the selection and releases its preview
func (p *Picker) Reset() {
	p.mu.Lock()
	previous := p.current
	p.current = nil
	p.mu.Unlock()

	if previous != nil {
		previous.preview.Release()
	}
}

// LivePreviews returns how many previews allocated by this picker are not yet released
func (p *Picker) LivePreviews() int {
	return int(p.live.Load())
}

func (p *Picker) newPreview(img *Image) *Preview {
	preview := &Preview{
		ID:          uuid.NewString(),
		Name:        img.Name,
		Size:        len(img.Data),
		ContentType: img.ContentType,
	}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data)); err == nil {
		preview.Width = cfg.Width
		preview.Height = cfg.Height
		preview.Format = format
	}

	p.live.Add(1)
	preview.onRelease = func() { p.live.Add(-1) }
	return preview
}

// formatBytes formats a byte count for display
func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := int64(n) / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
