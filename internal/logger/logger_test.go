package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"trace", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leafscan.log")

	l, err := New(Options{Level: "info", File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Info("hello", zap.String("crop", "Tomato"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"timestamp"`) {
		t.Errorf("expected timestamp key in %s", data)
	}
	if !strings.Contains(string(data), `"crop":"Tomato"`) {
		t.Errorf("expected crop field in %s", data)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestWithOperation(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := WithOperation(zap.New(core), "client.analyze", "req-1")
	l.Info("sent")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["operation"] != "client.analyze" {
		t.Errorf("expected operation field, got %v", fields["operation"])
	}
	if fields["request_id"] != "req-1" {
		t.Errorf("expected request_id field, got %v", fields["request_id"])
	}
}

func TestOperationError(t *testing.T) {
	base := errors.New("boom")
	err := NewOperationError("report.save", "req-9", base)

	if !errors.Is(err, base) {
		t.Error("expected errors.Is to find the cause")
	}
	if got := err.Error(); got != "report.save (request_id=req-9): boom" {
		t.Errorf("unexpected message %q", got)
	}
	if NewOperationError("x", "", nil) != nil {
		t.Error("expected nil for nil cause")
	}
}
