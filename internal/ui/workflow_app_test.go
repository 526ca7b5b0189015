package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/yildizm/LeafScan/internal/diagnosis"
	"github.com/yildizm/LeafScan/internal/monitor"
	"github.com/yildizm/LeafScan/internal/picker"
	"github.com/yildizm/LeafScan/internal/workflow"
)

type stubAnalyzer struct {
	result *diagnosis.Result
	err    error
}

func (s *stubAnalyzer) Analyze(context.Context, *picker.Image) (*diagnosis.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result.Clone(), nil
}

type stubExporter struct {
	path string
}

func (s *stubExporter) Export(context.Context, *diagnosis.Result) (string, error) {
	return s.path, nil
}

func openStub(path string) (*picker.Image, error) {
	if strings.HasPrefix(path, "missing") {
		return nil, errors.New("no such file")
	}
	return picker.NewImage(path, []byte("leaf")), nil
}

func newTestModel(t *testing.T, opts Options) (*WorkflowModel, *workflow.Controller) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	if opts.Controller == nil {
		analyzer := &stubAnalyzer{result: &diagnosis.Result{
			Crop:       "Tomato",
			Status:     diagnosis.StatusHealthy,
			Disease:    "None",
			Severity:   "None",
			Confidence: 0.97,
			Advice:     "Your crop looks healthy!",
		}}
		opts.Controller = workflow.New(picker.New(), analyzer, &stubExporter{path: "/tmp/crop_report.pdf"}, zap.NewNop())
	}
	if opts.Open == nil {
		opts.Open = openStub
	}
	return NewWorkflowModel(opts), opts.Controller
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and flattens batches into their messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// feed applies every message produced by cmd to the model
func feed(m *WorkflowModel, cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		m.Update(msg)
	}
}

func selectImage(t *testing.T, m *WorkflowModel, name string) {
	t.Helper()
	m.Update(imageSelectedMsg{path: name, image: picker.NewImage(name, []byte("leaf"))})
}

func TestInitOpensInitialImage(t *testing.T) {
	m, ctrl := newTestModel(t, Options{InitialImage: "leaf.jpg"})

	feed(m, m.Init())

	snap := ctrl.Snapshot()
	if snap.State != workflow.StateImageReady {
		t.Fatalf("Expected ImageReady, got %s", snap.State)
	}
	if snap.Image == nil || snap.Image.Name != "leaf.jpg" {
		t.Errorf("Expected leaf.jpg selected, got %+v", snap.Image)
	}
	if !strings.Contains(m.View(), "leaf.jpg") {
		t.Errorf("Expected preview summary in view:\n%s", m.View())
	}
}

func TestInitWithoutImageOrWatcher(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	if cmd := m.Init(); cmd != nil {
		t.Error("Expected no initial command")
	}
	if !strings.Contains(m.View(), "No image selected") {
		t.Errorf("Expected empty selection in view:\n%s", m.View())
	}
}

func TestAnalyzeFlow(t *testing.T) {
	m, ctrl := newTestModel(t, Options{})
	selectImage(t, m, "leaf.jpg")

	_, cmd := m.Update(key("a"))
	if cmd == nil {
		t.Fatal("Expected analyze command")
	}
	if ctrl.State() != workflow.StateAnalyzing {
		t.Fatalf("Expected Analyzing, got %s", ctrl.State())
	}
	if !strings.Contains(m.View(), workflow.AnalyzingLabel) {
		t.Errorf("Expected %q in view:\n%s", workflow.AnalyzingLabel, m.View())
	}

	feed(m, cmd)

	if ctrl.State() != workflow.StateResultReady {
		t.Fatalf("Expected ResultReady, got %s", ctrl.State())
	}
	view := m.View()
	for _, want := range []string{"Tomato", "Healthy", "97.00%", "Your crop looks healthy!", workflow.AnalyzeLabel} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in view:\n%s", want, view)
		}
	}
}

func TestAnalyzeWithoutImageShowsWarning(t *testing.T) {
	m, ctrl := newTestModel(t, Options{})

	_, cmd := m.Update(key("a"))
	if cmd != nil {
		t.Error("Expected no command without an image")
	}
	if ctrl.State() != workflow.StateIdle {
		t.Errorf("Expected Idle, got %s", ctrl.State())
	}
	if !strings.Contains(m.View(), diagnosis.ErrNoImage.Error()) {
		t.Errorf("Expected warning in view:\n%s", m.View())
	}
}

func TestAnalyzeFailureShowsError(t *testing.T) {
	analyzer := &stubAnalyzer{err: diagnosis.NewStatusError("/api/crop-diagnosis", 500, "model crashed")}
	ctrl := workflow.New(picker.New(), analyzer, &stubExporter{}, zap.NewNop())
	m, _ := newTestModel(t, Options{Controller: ctrl})
	selectImage(t, m, "leaf.jpg")

	_, cmd := m.Update(key("a"))
	feed(m, cmd)

	if ctrl.State() != workflow.StateImageReady {
		t.Fatalf("Expected ImageReady after failure, got %s", ctrl.State())
	}
	if !strings.Contains(m.View(), "model crashed") {
		t.Errorf("Expected service error in view:\n%s", m.View())
	}
}

func TestExportFlow(t *testing.T) {
	stats := monitor.NewTracker()
	m, ctrl := newTestModel(t, Options{Stats: stats})
	ctrl.SetRecorder(stats)
	selectImage(t, m, "leaf.jpg")

	_, cmd := m.Update(key("a"))
	feed(m, cmd)

	_, cmd = m.Update(key("e"))
	if ctrl.State() != workflow.StateExporting {
		t.Fatalf("Expected Exporting, got %s", ctrl.State())
	}
	feed(m, cmd)

	if ctrl.State() != workflow.StateResultReady {
		t.Fatalf("Expected ResultReady after export, got %s", ctrl.State())
	}
	view := m.View()
	if !strings.Contains(view, "Report saved to /tmp/crop_report.pdf") {
		t.Errorf("Expected report path in view:\n%s", view)
	}
	if !strings.Contains(view, "analyze 1/1") || !strings.Contains(view, "export 1/1") {
		t.Errorf("Expected request stats in footer:\n%s", view)
	}
}

func TestExportWithoutResultShowsWarning(t *testing.T) {
	m, ctrl := newTestModel(t, Options{})
	selectImage(t, m, "leaf.jpg")

	if _, cmd := m.Update(key("e")); cmd != nil {
		t.Error("Expected no export command without a result")
	}
	if ctrl.State() != workflow.StateImageReady {
		t.Errorf("Expected ImageReady, got %s", ctrl.State())
	}
	if !strings.Contains(m.View(), diagnosis.ErrNoResult.Error()) {
		t.Errorf("Expected warning in view:\n%s", m.View())
	}
}

func TestPathInputOpensImage(t *testing.T) {
	m, ctrl := newTestModel(t, Options{})

	m.Update(key("o"))
	if !m.input.Focused() {
		t.Fatal("Expected path input to be focused")
	}
	m.Update(key("'fields/leaf.png'"))

	_, cmd := m.Update(key("enter"))
	if m.input.Focused() {
		t.Error("Expected input to blur after enter")
	}
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("Expected one message, got %d", len(msgs))
	}
	selected, ok := msgs[0].(imageSelectedMsg)
	if !ok {
		t.Fatalf("Expected imageSelectedMsg, got %T", msgs[0])
	}
	if selected.path != "fields/leaf.png" {
		t.Errorf("Expected quotes trimmed, got %q", selected.path)
	}

	m.Update(selected)
	if ctrl.State() != workflow.StateImageReady {
		t.Errorf("Expected ImageReady, got %s", ctrl.State())
	}
}

func TestPathInputKeysDoNotTriggerActions(t *testing.T) {
	m, ctrl := newTestModel(t, Options{})
	selectImage(t, m, "leaf.jpg")

	m.Update(key("o"))
	m.Update(key("a"))
	if ctrl.State() != workflow.StateImageReady {
		t.Errorf("Typing into the input must not analyze, got %s", ctrl.State())
	}

	m.Update(key("esc"))
	if m.input.Focused() {
		t.Error("Expected esc to blur the input")
	}
}

func TestEmptyPathSubmissionIsNoOp(t *testing.T) {
	m, ctrl := newTestModel(t, Options{})
	selectImage(t, m, "leaf.jpg")

	m.Update(key("o"))
	if _, cmd := m.Update(key("enter")); cmd != nil {
		t.Error("Expected no open command for empty input")
	}

	snap := ctrl.Snapshot()
	if snap.State != workflow.StateImageReady || snap.Image == nil || snap.Image.Name != "leaf.jpg" {
		t.Errorf("Expected previous selection kept, got %s %+v", snap.State, snap.Image)
	}
}

func TestOpenFailureShowsNotice(t *testing.T) {
	m, ctrl := newTestModel(t, Options{})

	feed(m, openImageCommand(m.open, "missing.jpg"))

	if ctrl.State() != workflow.StateIdle {
		t.Errorf("Expected Idle, got %s", ctrl.State())
	}
	if !strings.Contains(m.View(), "Cannot open missing.jpg") {
		t.Errorf("Expected notice in view:\n%s", m.View())
	}
}

func TestWatchedPathsSelectImages(t *testing.T) {
	paths := make(chan string, 1)
	paths <- "incoming/leaf.jpg"
	close(paths)

	m, ctrl := newTestModel(t, Options{Paths: paths})
	if !strings.Contains(m.View(), "Watching for new images") {
		t.Errorf("Expected watch indicator in view:\n%s", m.View())
	}

	msgs := collect(m.Init())
	if len(msgs) != 1 {
		t.Fatalf("Expected one watch message, got %d", len(msgs))
	}
	_, cmd := m.Update(msgs[0])
	feed(m, cmd)

	if snap := ctrl.Snapshot(); snap.Image == nil || snap.Image.Name != "incoming/leaf.jpg" {
		t.Errorf("Expected watched image selected, got %+v", snap.Image)
	}
	if m.paths != nil {
		t.Error("Expected watcher subscription to end after channel close")
	}
}

func TestResetClearsSelection(t *testing.T) {
	m, ctrl := newTestModel(t, Options{})
	selectImage(t, m, "leaf.jpg")

	m.Update(key("r"))

	if ctrl.State() != workflow.StateIdle {
		t.Errorf("Expected Idle after reset, got %s", ctrl.State())
	}
}

func TestSpinnerTickIgnoredWhenIdle(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	if _, cmd := m.Update(spinner.TickMsg{}); cmd != nil {
		t.Error("Expected spinner to stop when not busy")
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m.Update(key("?"))
	if !strings.Contains(m.View(), "Toggle this help") {
		t.Errorf("Expected help view:\n%s", m.View())
	}
	m.Update(key("esc"))
	if strings.Contains(m.View(), "Toggle this help") {
		t.Error("Expected esc to close help")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if !strings.Contains(m.View(), "Goodbye") {
		t.Errorf("Expected goodbye view, got %q", m.View())
	}
}

func TestWindowResizeBoundsBar(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m.Update(tea.WindowSizeMsg{Width: 200, Height: 50})
	if m.barWidth != maxBarWidth {
		t.Errorf("Expected bar width %d, got %d", maxBarWidth, m.barWidth)
	}
	m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	if m.barWidth != 10 {
		t.Errorf("Expected minimum bar width 10, got %d", m.barWidth)
	}
}
