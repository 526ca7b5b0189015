// Package cache keeps recent diagnoses keyed by image content.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/yildizm/LeafScan/internal/diagnosis"
	"github.com/yildizm/LeafScan/internal/logger"
	"github.com/yildizm/LeafScan/internal/picker"
)

// Analyzer is the diagnosis call being cached
type Analyzer interface {
	Analyze(ctx context.Context, img *picker.Image) (*diagnosis.Result, error)
}

// CachedAnalyzer answers repeated submissions of identical bytes from memory.
// Failures are never cached.
type CachedAnalyzer struct {
	next    Analyzer
	entries *lru.Cache[string, diagnosis.Result]
	logger  *zap.Logger
}

// Wrap returns next unchanged when size <= 0, otherwise a CachedAnalyzer holding up to size entries
func Wrap(next Analyzer, size int, log *zap.Logger) (Analyzer, error) {
	if size <= 0 {
		return next, nil
	}
	return New(next, size, log)
}

// New creates a CachedAnalyzer
func New(next Analyzer, size int, log *zap.Logger) (*CachedAnalyzer, error) {
	entries, err := lru.New[string, diagnosis.Result](size)
	if err != nil {
		return nil, err
	}
	return &CachedAnalyzer{
		next:    next,
		entries: entries,
		logger:  logger.OrNop(log).Named("cache"),
	}, nil
}

// Analyze returns a cached diagnosis for the same image bytes or delegates
func (c *CachedAnalyzer) Analyze(ctx context.Context, img *picker.Image) (*diagnosis.Result, error) {
	if img == nil {
		return c.next.Analyze(ctx, img)
	}

	key := Key(img.Data)
	if result, ok := c.entries.Get(key); ok {
		c.logger.Debug("cache hit", zap.String("key", key), zap.String("image", img.Name))
		return &result, nil
	}

	result, err := c.next.Analyze(ctx, img)
	if err != nil {
		return nil, err
	}
	if result != nil {
		c.entries.Add(key, *result)
	}
	return result, nil
}

// Len returns the number of cached diagnoses
func (c *CachedAnalyzer) Len() int {
	return c.entries.Len()
}

// Purge drops every cached diagnosis
func (c *CachedAnalyzer) Purge() {
	c.entries.Purge()
}

// Key is the hex SHA-1 of the image bytes
func Key(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}
