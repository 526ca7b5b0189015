package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/LeafScan/internal/diagnosis"
	"github.com/yildizm/LeafScan/internal/emoji"
	"github.com/yildizm/LeafScan/internal/monitor"
	"github.com/yildizm/LeafScan/internal/picker"
	"github.com/yildizm/LeafScan/internal/workflow"
)

const (
	defaultBarWidth = 40
	maxBarWidth     = 60
)

// Options configures the workflow TUI
type Options struct {
	Controller *workflow.Controller

	// InitialImage is opened on start when set
	InitialImage string

	// Paths delivers images found by a directory watcher
	Paths <-chan string

	// Open loads an image from disk; defaults to picker.Open
	Open func(path string) (*picker.Image, error)

	// Stats is shown in the footer when set
	Stats *monitor.Tracker

	Context context.Context
}

// WorkflowModel drives the select, analyze, export flow from the keyboard
type WorkflowModel struct {
	ctrl  *workflow.Controller
	ctx   context.Context
	open  func(string) (*picker.Image, error)
	paths <-chan string
	stats *monitor.Tracker

	initialImage string

	input   textinput.Model
	spinner spinner.Model
	styles  *Styles

	width    int
	height   int
	barWidth int
	showHelp bool
	quitting bool

	// notice is the last local message, such as a file that failed to open
	notice string
}

// NewWorkflowModel creates the model around an existing controller
func NewWorkflowModel(opts Options) *WorkflowModel {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	open := opts.Open
	if open == nil {
		open = picker.Open
	}
	styles := GetStyles()

	input := textinput.New()
	input.Placeholder = "path/to/leaf.jpg"
	input.Prompt = emoji.GetEmoji("image") + " "
	input.CharLimit = 4096
	input.Width = 50

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	if !styles.plain {
		spin.Style = lipgloss.NewStyle().Foreground(styles.Theme.Primary)
	}

	return &WorkflowModel{
		ctrl:         opts.Controller,
		ctx:          ctx,
		open:         open,
		paths:        opts.Paths,
		stats:        opts.Stats,
		initialImage: opts.InitialImage,
		input:        input,
		spinner:      spin,
		styles:       styles,
		barWidth:     defaultBarWidth,
	}
}

// Init opens the initial image and subscribes to the watcher
func (m *WorkflowModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.initialImage != "" {
		cmds = append(cmds, openImageCommand(m.open, m.initialImage))
	}
	cmds = append(cmds, waitForPathCommand(m.paths))
	return tea.Batch(cmds...)
}

// Update handles messages and keys
func (m *WorkflowModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		if m.input.Focused() {
			return m.handleInputKey(msg)
		}
		return m.handleKeyPress(msg)
	case imageSelectedMsg:
		return m.handleImageSelected(msg)
	case imageOpenFailedMsg:
		m.notice = fmt.Sprintf("Cannot open %s: %v", msg.path, msg.err)
		return m, nil
	case watchedPathMsg:
		return m, tea.Batch(openImageCommand(m.open, msg.path), waitForPathCommand(m.paths))
	case watchClosedMsg:
		m.paths = nil
		return m, nil
	case taskDoneMsg:
		m.ctrl.Resolve(msg.outcome)
		return m, nil
	case spinner.TickMsg:
		if !m.ctrl.State().Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleWindowResize handles window resize events
func (m *WorkflowModel) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.barWidth = min(maxBarWidth, max(10, msg.Width-20))
	m.input.Width = min(80, max(20, msg.Width-10))
	return m, nil
}

// handleInputKey handles keys while the path input has focus
func (m *WorkflowModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.handleQuit()
	case "esc":
		m.input.Blur()
		return m, nil
	case "enter":
		path := strings.Trim(strings.TrimSpace(m.input.Value()), `"'`)
		m.input.Reset()
		m.input.Blur()
		if path == "" {
			// an empty submission behaves like cancelling the file dialog
			_ = m.ctrl.SelectImage(nil)
			return m, nil
		}
		return m, openImageCommand(m.open, path)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKeyPress handles keyboard input
func (m *WorkflowModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m.handleQuit()
	case "o", "/":
		m.showHelp = false
		m.notice = ""
		return m, m.input.Focus()
	case "a", "enter":
		return m.handleAnalyze()
	case "e":
		return m.handleExport()
	case "r":
		m.ctrl.Reset()
		m.notice = ""
		return m, nil
	case "h", "?":
		m.showHelp = !m.showHelp
		return m, nil
	case "esc":
		m.showHelp = false
		return m, nil
	}
	return m, nil
}

// handleQuit handles quit commands
func (m *WorkflowModel) handleQuit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// handleAnalyze issues an analyze request; rejections show up as warnings
func (m *WorkflowModel) handleAnalyze() (tea.Model, tea.Cmd) {
	m.notice = ""
	task, err := m.ctrl.RequestAnalyze(m.ctx)
	if err != nil {
		return m, nil
	}
	return m, tea.Batch(runTaskCommand(task), m.spinner.Tick)
}

// handleExport issues an export request
func (m *WorkflowModel) handleExport() (tea.Model, tea.Cmd) {
	m.notice = ""
	task, err := m.ctrl.RequestExport(m.ctx)
	if err != nil {
		return m, nil
	}
	return m, tea.Batch(runTaskCommand(task), m.spinner.Tick)
}

// handleImageSelected hands a loaded image to the controller
func (m *WorkflowModel) handleImageSelected(msg imageSelectedMsg) (tea.Model, tea.Cmd) {
	if err := m.ctrl.SelectImage(msg.image); err != nil {
		return m, nil
	}
	m.notice = ""
	return m, nil
}

// View renders the workflow screen
func (m *WorkflowModel) View() string {
	if m.quitting {
		return m.styles.Render(m.styles.Success, emoji.GetEmoji("door")+" Goodbye!") + "\n"
	}

	snap := m.ctrl.Snapshot()

	var b strings.Builder
	b.WriteString(m.styles.Render(m.styles.Title, emoji.GetEmoji("leaf")+" LeafScan Crop Health") + "\n\n")

	if m.showHelp {
		b.WriteString(m.renderHelp())
		return b.String()
	}

	b.WriteString(m.renderImage(snap) + "\n")
	b.WriteString(m.renderActions(snap) + "\n\n")

	if snap.Result != nil {
		b.WriteString(m.renderResult(snap) + "\n")
	}
	if snap.ReportPath != "" {
		b.WriteString(m.styles.Render(m.styles.Success,
			fmt.Sprintf("%s Report saved to %s", emoji.GetEmoji("report"), snap.ReportPath)) + "\n")
	}
	b.WriteString(m.renderMessages(snap))
	b.WriteString("\n" + m.renderFooter())

	return b.String()
}

func (m *WorkflowModel) renderImage(snap workflow.Snapshot) string {
	var b strings.Builder
	b.WriteString(m.styles.Render(m.styles.Header, "Image") + "\n")

	if m.input.Focused() {
		b.WriteString(m.styles.Render(m.styles.Focused, m.input.View()) + "\n")
		b.WriteString(m.styles.Render(m.styles.Muted, "enter to open, esc to cancel") + "\n")
		return b.String()
	}

	summary := "No image selected"
	if preview := snap.Image.Preview(); preview != nil {
		summary = preview.Summary()
	}
	b.WriteString(m.styles.Render(m.styles.Panel, summary) + "\n")
	if m.paths != nil {
		b.WriteString(m.styles.Render(m.styles.Info, emoji.GetEmoji("watch")+" Watching for new images") + "\n")
	}
	return b.String()
}

func (m *WorkflowModel) renderActions(snap workflow.Snapshot) string {
	analyze := "[a] " + snap.AnalyzeLabel()
	if snap.State == workflow.StateAnalyzing {
		analyze = m.spinner.View() + " " + snap.AnalyzeLabel()
	}
	analyzeStyle := m.styles.ButtonDisabled
	if snap.CanAnalyze() {
		analyzeStyle = m.styles.Button
	}

	export := "[e] Download Report"
	if snap.State == workflow.StateExporting {
		export = m.spinner.View() + " Generating report..."
	}
	exportStyle := m.styles.ButtonDisabled
	if snap.CanExport() {
		exportStyle = m.styles.Button
	}

	return m.styles.Render(analyzeStyle, analyze) + "  " + m.styles.Render(exportStyle, export)
}

func (m *WorkflowModel) renderResult(snap workflow.Snapshot) string {
	p := snap.Presentation

	status := emoji.Status(p.Healthy) + " " + p.Status
	if !m.styles.plain {
		status = lipgloss.NewStyle().Foreground(p.StatusColor).Bold(true).Render(status)
	}

	bar := progress.New(
		progress.WithSolidFill(string(p.StatusColor)),
		progress.WithoutPercentage(),
		progress.WithWidth(m.barWidth),
	)
	if m.styles.plain {
		bar.Full = '#'
		bar.Empty = '-'
	}

	lines := []string{
		fmt.Sprintf("%s Crop:       %s", emoji.GetEmoji("crop"), p.Crop),
		fmt.Sprintf("   Status:     %s", status),
		fmt.Sprintf("   Disease:    %s", p.Disease),
		fmt.Sprintf("%s Severity:   %s", emoji.GetEmoji("severity"), p.Severity),
		fmt.Sprintf("   Confidence: %s", p.ConfidenceLabel),
		"   " + bar.ViewAs(float64(p.BarWidth)/100),
	}
	if p.Advice != "" {
		lines = append(lines, "", fmt.Sprintf("%s %s", emoji.GetEmoji("advice"), p.Advice))
	}

	return m.styles.Render(m.styles.Box, strings.Join(lines, "\n"))
}

func (m *WorkflowModel) renderMessages(snap workflow.Snapshot) string {
	var b strings.Builder
	if snap.Err != nil {
		b.WriteString(m.styles.Render(m.styles.Error,
			emoji.GetEmoji("error")+" "+diagnosis.UserMessage(snap.Err)) + "\n")
	}
	if snap.Warning != "" {
		b.WriteString(m.styles.Render(m.styles.Warning, emoji.GetEmoji("warning")+" "+snap.Warning) + "\n")
	}
	if m.notice != "" {
		b.WriteString(m.styles.Render(m.styles.Warning, emoji.GetEmoji("warning")+" "+m.notice) + "\n")
	}
	return b.String()
}

func (m *WorkflowModel) renderFooter() string {
	footer := "o open • a analyze • e export • r reset • ? help • q quit"
	if m.stats != nil {
		if line := m.stats.Line(); line != "" {
			footer += "  |  " + line
		}
	}
	return m.styles.Render(m.styles.Muted, footer)
}

func (m *WorkflowModel) renderHelp() string {
	keys := [][2]string{
		{"o, /", "Type the path of a leaf image"},
		{"a, enter", "Analyze the selected image"},
		{"e", "Download the PDF report for the diagnosis"},
		{"r", "Clear the selection"},
		{"?, h", "Toggle this help"},
		{"q, ctrl+c", "Quit"},
	}

	var b strings.Builder
	b.WriteString(m.styles.Render(m.styles.Header, emoji.GetEmoji("help")+" Keys") + "\n\n")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("  %-10s %s\n", k[0], k[1]))
	}
	b.WriteString("\n" + m.styles.Render(m.styles.Muted, "Press ? or esc to go back") + "\n")
	return b.String()
}

// Run runs the workflow TUI until the user quits or ctx is cancelled
func Run(opts Options) error {
	if opts.Controller == nil {
		return errors.New("workflow controller is required")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	defer opts.Controller.Reset()

	model := NewWorkflowModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
