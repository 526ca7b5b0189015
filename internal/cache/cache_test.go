package cache

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/yildizm/LeafScan/internal/diagnosis"
	"github.com/yildizm/LeafScan/internal/picker"
)

type countingAnalyzer struct {
	calls int
	err   error
}

func (a *countingAnalyzer) Analyze(_ context.Context, img *picker.Image) (*diagnosis.Result, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return &diagnosis.Result{Crop: img.Name, Status: diagnosis.StatusHealthy, Confidence: 0.9}, nil
}

func TestWrapDisabled(t *testing.T) {
	next := &countingAnalyzer{}
	got, err := Wrap(next, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}
	if got != Analyzer(next) {
		t.Error("Expected the wrapped analyzer unchanged when size is 0")
	}
}

func TestCachedAnalyzerHit(t *testing.T) {
	next := &countingAnalyzer{}
	c, err := New(next, 2, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	first, err := c.Analyze(ctx, picker.NewImage("a.jpg", []byte("same")))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	second, err := c.Analyze(ctx, picker.NewImage("b.jpg", []byte("same")))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if next.calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", next.calls)
	}
	if second.Crop != first.Crop {
		t.Errorf("Expected cached result %q, got %q", first.Crop, second.Crop)
	}

	second.Crop = "mutated"
	third, _ := c.Analyze(ctx, picker.NewImage("c.jpg", []byte("same")))
	if third.Crop != "a.jpg" {
		t.Errorf("Expected cached value isolated from callers, got %q", third.Crop)
	}
}

func TestCachedAnalyzerEvicts(t *testing.T) {
	next := &countingAnalyzer{}
	c, _ := New(next, 1, zap.NewNop())
	ctx := context.Background()

	_, _ = c.Analyze(ctx, picker.NewImage("a.jpg", []byte("a")))
	_, _ = c.Analyze(ctx, picker.NewImage("b.jpg", []byte("b")))
	_, _ = c.Analyze(ctx, picker.NewImage("a.jpg", []byte("a")))

	if next.calls != 3 {
		t.Errorf("Expected 3 upstream calls after eviction, got %d", next.calls)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}
}

func TestCachedAnalyzerDoesNotCacheErrors(t *testing.T) {
	next := &countingAnalyzer{err: errors.New("boom")}
	c, _ := New(next, 4, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := c.Analyze(ctx, picker.NewImage("a.jpg", []byte("a"))); err == nil {
			t.Fatal("Expected error")
		}
	}
	if next.calls != 2 {
		t.Errorf("Expected 2 upstream calls, got %d", next.calls)
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d", c.Len())
	}
}

func TestKey(t *testing.T) {
	if Key([]byte("abc")) != "a9993e364706816aba3e25717850c26c9cd0d89d" {
		t.Errorf("Unexpected key %s", Key([]byte("abc")))
	}
}
