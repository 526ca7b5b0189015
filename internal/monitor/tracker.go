// Package monitor keeps per-operation request statistics for a session.
package monitor

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yildizm/go-termfmt"
)

type operationStats struct {
	timer   *Timer
	success *Counter
	failure *Counter
	stale   *Counter
}

// Tracker records how long requests take and how they end
type Tracker struct {
	mu    sync.RWMutex
	ops   map[OperationType]*operationStats
	start time.Time
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		ops:   make(map[OperationType]*operationStats),
		start: time.Now(),
	}
}

func (t *Tracker) stats(op OperationType) *operationStats {
	t.mu.RLock()
	s, ok := t.ops[op]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.ops[op]; ok {
		return s
	}
	s = &operationStats{
		timer:   NewTimer(string(op)),
		success: NewCounter(string(op) + "_success"),
		failure: NewCounter(string(op) + "_failure"),
		stale:   NewCounter(string(op) + "_stale"),
	}
	t.ops[op] = s
	return s
}

// Record stores one finished request. Stale outcomes are timed but counted separately.
func (t *Tracker) Record(operation string, duration time.Duration, err error, applied bool) {
	s := t.stats(OperationType(operation))
	s.timer.Record(duration)
	switch {
	case !applied:
		s.stale.Inc()
	case err != nil:
		s.failure.Inc()
	default:
		s.success.Inc()
	}
}

// Snapshot returns metrics for every operation seen so far, sorted by name
func (t *Tracker) Snapshot() []OperationMetrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]OperationMetrics, 0, len(t.ops))
	for op, s := range t.ops {
		out = append(out, OperationMetrics{
			Operation:    op,
			Count:        s.timer.Count(),
			TotalTime:    s.timer.TotalTime().Nanoseconds(),
			MinTime:      s.timer.MinTime().Nanoseconds(),
			MaxTime:      s.timer.MaxTime().Nanoseconds(),
			LastTime:     s.timer.LastTime().Nanoseconds(),
			ErrorCount:   s.failure.Get(),
			SuccessCount: s.success.Get(),
			StaleCount:   s.stale.Get(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// Summary renders the snapshot as a tree for terminal output
func (t *Tracker) Summary(opts *termfmt.TerminalOptions) string {
	snapshot := t.Snapshot()
	if len(snapshot) == 0 {
		return "No requests recorded"
	}
	if opts == nil {
		opts = termfmt.DefaultOptions()
	}

	items := make([]termfmt.TreeItem, 0, len(snapshot))
	for i, m := range snapshot {
		items = append(items, termfmt.TreeItem{
			Label: string(m.Operation),
			Value: fmt.Sprintf("%d ok, %d failed, %d superseded, avg %s",
				m.SuccessCount, m.ErrorCount, m.StaleCount, m.AvgTime().Round(time.Millisecond)),
			Last: i == len(snapshot)-1,
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", time.Since(t.start).Round(time.Second))
	b.WriteString(termfmt.TreeViewWithOptions(items, opts))
	return b.String()
}

// Line is a one-line digest for status bars
func (t *Tracker) Line() string {
	snapshot := t.Snapshot()
	parts := make([]string, 0, len(snapshot))
	for _, m := range snapshot {
		parts = append(parts, fmt.Sprintf("%s %d/%d", m.Operation, m.SuccessCount, m.Count))
	}
	return strings.Join(parts, " · ")
}
