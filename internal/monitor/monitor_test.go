package monitor

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimer(t *testing.T) {
	timer := NewTimer("analyze")

	if timer.MinTime() != 0 || timer.AvgTime() != 0 {
		t.Error("Expected zero values before any record")
	}

	timer.Record(100 * time.Millisecond)
	timer.Record(300 * time.Millisecond)

	if timer.Count() != 2 {
		t.Errorf("Expected count 2, got %d", timer.Count())
	}
	if timer.MinTime() != 100*time.Millisecond {
		t.Errorf("Expected min 100ms, got %v", timer.MinTime())
	}
	if timer.MaxTime() != 300*time.Millisecond {
		t.Errorf("Expected max 300ms, got %v", timer.MaxTime())
	}
	if timer.AvgTime() != 200*time.Millisecond {
		t.Errorf("Expected avg 200ms, got %v", timer.AvgTime())
	}
	if timer.LastTime() != 300*time.Millisecond {
		t.Errorf("Expected last 300ms, got %v", timer.LastTime())
	}
}

func TestTimerConcurrent(t *testing.T) {
	timer := NewTimer("concurrent")
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(ms int) {
			defer wg.Done()
			timer.Record(time.Duration(ms) * time.Millisecond)
		}(i)
	}
	wg.Wait()

	if timer.Count() != 50 {
		t.Errorf("Expected 50 records, got %d", timer.Count())
	}
	if timer.MinTime() != time.Millisecond || timer.MaxTime() != 50*time.Millisecond {
		t.Errorf("Unexpected bounds %v..%v", timer.MinTime(), timer.MaxTime())
	}
}

func TestTrackerRecord(t *testing.T) {
	tracker := NewTracker()

	tracker.Record("analyze", time.Second, nil, true)
	tracker.Record("analyze", 3*time.Second, errors.New("timeout"), true)
	tracker.Record("analyze", 2*time.Second, nil, false)
	tracker.Record("export", 500*time.Millisecond, nil, true)

	snapshot := tracker.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("Expected 2 operations, got %d", len(snapshot))
	}

	analyze := snapshot[0]
	if analyze.Operation != OperationAnalyze {
		t.Fatalf("Expected analyze first, got %s", analyze.Operation)
	}
	if analyze.Count != 3 || analyze.SuccessCount != 1 || analyze.ErrorCount != 1 || analyze.StaleCount != 1 {
		t.Errorf("Unexpected analyze metrics %+v", analyze)
	}
	if analyze.AvgTime() != 2*time.Second {
		t.Errorf("Expected avg 2s, got %v", analyze.AvgTime())
	}

	if snapshot[1].Operation != OperationExport || snapshot[1].SuccessCount != 1 {
		t.Errorf("Unexpected export metrics %+v", snapshot[1])
	}
}

func TestTrackerSummary(t *testing.T) {
	tracker := NewTracker()
	if tracker.Summary(nil) != "No requests recorded" {
		t.Errorf("Unexpected empty summary %q", tracker.Summary(nil))
	}

	tracker.Record("analyze", 1500*time.Millisecond, nil, true)
	summary := tracker.Summary(nil)
	if !strings.Contains(summary, "analyze") || !strings.Contains(summary, "1 ok, 0 failed, 0 superseded") {
		t.Errorf("Unexpected summary:\n%s", summary)
	}

	if line := tracker.Line(); line != "analyze 1/1" {
		t.Errorf("Unexpected line %q", line)
	}
}
