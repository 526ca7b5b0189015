// Package workflow orchestrates image selection, analysis, result rendering
// and report export as one explicit state machine.
package workflow

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yildizm/LeafScan/internal/diagnosis"
	"github.com/yildizm/LeafScan/internal/logger"
	"github.com/yildizm/LeafScan/internal/picker"
	"github.com/yildizm/LeafScan/internal/presenter"
)

// Analyzer submits an image for diagnosis
type Analyzer interface {
	Analyze(ctx context.Context, img *picker.Image) (*diagnosis.Result, error)
}

// Exporter turns a diagnosis into a saved report and returns its path
type Exporter interface {
	Export(ctx context.Context, result *diagnosis.Result) (string, error)
}

// Recorder receives timing for every resolved outcome
type Recorder interface {
	Record(operation string, duration time.Duration, err error, applied bool)
}

// Task performs the network part of a request outside the controller lock
type Task func() Outcome

// Outcome is what a Task produced, stamped with the generation it was issued under
type Outcome struct {
	Kind       TaskKind
	Generation uint64
	Result     *diagnosis.Result
	ReportPath string
	Err        error
	Duration   time.Duration
}

// Snapshot is an immutable view of the controller for rendering
type Snapshot struct {
	State        State
	Generation   uint64
	Image        *picker.Image
	Result       *diagnosis.Result
	Presentation presenter.Presentation
	ReportPath   string

	// Err is the last transport or protocol failure
	Err error

	// Warning is the last user-input or precondition message
	Warning string
}

// AnalyzeLabel is the analyze trigger text for the current state
func (s Snapshot) AnalyzeLabel() string {
	if s.State == StateAnalyzing {
		return AnalyzingLabel
	}
	return AnalyzeLabel
}

// CanAnalyze reports whether the analyze trigger is enabled
func (s Snapshot) CanAnalyze() bool {
	return s.Image != nil && !s.State.Busy()
}

// CanExport reports whether the export trigger is enabled
func (s Snapshot) CanExport() bool {
	return s.State == StateResultReady && s.Result != nil
}

type transition struct {
	from, to State
}

// Controller owns the selected image and the current diagnosis. Every request
// is stamped with the generation current at issue time; outcomes from older
// generations are discarded.
type Controller struct {
	mu         sync.Mutex
	state      State
	stable     State
	generation uint64

	picker   *picker.Picker
	analyzer Analyzer
	exporter Exporter

	result     *diagnosis.Result
	reportPath string
	lastErr    error
	warning    string

	listeners []Listener
	pending   []transition
	recorder  Recorder
	logger    *zap.Logger
}

// New creates a controller in the Idle state
func New(p *picker.Picker, analyzer Analyzer, exporter Exporter, log *zap.Logger) *Controller {
	if p == nil {
		p = picker.New()
	}
	return &Controller{
		state:    StateIdle,
		stable:   StateIdle,
		picker:   p,
		analyzer: analyzer,
		exporter: exporter,
		logger:   logger.OrNop(log).Named("workflow"),
	}
}

// AddListener registers a transition observer
func (c *Controller) AddListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// SetRecorder attaches request metrics
func (c *Controller) SetRecorder(r Recorder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recorder = r
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current view of the workflow
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SelectImage makes img the current image and clears any prior diagnosis.
// A nil image leaves the state unchanged and returns diagnosis.ErrNoImage.
// Selecting while a request is outstanding supersedes it: its outcome will be ignored.
func (c *Controller) SelectImage(img *picker.Image) error {
	c.mu.Lock()
	defer c.unlock()

	selected, err := c.picker.Select(img)
	if err != nil {
		c.warnLocked(err)
		return err
	}

	c.generation++
	c.result = nil
	c.reportPath = ""
	c.lastErr = nil
	c.warning = ""
	c.stable = StateImageReady
	c.transitionLocked(StateImageReady)

	c.logger.Info("image selected",
		zap.String("image", selected.Name),
		zap.Int("bytes", selected.Size()),
		zap.Uint64("generation", c.generation))
	return nil
}

// RequestAnalyze moves to Analyzing and returns the task that performs the
// request. It issues nothing when no image is selected or a request is outstanding.
func (c *Controller) RequestAnalyze(ctx context.Context) (Task, error) {
	c.mu.Lock()
	defer c.unlock()

	if c.state.Busy() {
		c.warnLocked(diagnosis.ErrBusy)
		return nil, diagnosis.ErrBusy
	}
	img := c.picker.Current()
	if img == nil {
		c.warnLocked(diagnosis.ErrNoImage)
		return nil, diagnosis.ErrNoImage
	}

	c.stable = c.state
	c.generation++
	c.lastErr = nil
	c.warning = ""
	c.transitionLocked(StateAnalyzing)

	gen := c.generation
	analyzer := c.analyzer
	opLogger := c.logger.With(zap.Uint64("generation", gen))
	opLogger.Debug("analyze issued", zap.String("image", img.Name))

	return func() Outcome {
		start := time.Now()
		result, err := analyzer.Analyze(ctx, img)
		return Outcome{Kind: TaskAnalyze, Generation: gen, Result: result, Err: err, Duration: time.Since(start)}
	}, nil
}

// RequestExport moves to Exporting and returns the task that fetches and saves the report
func (c *Controller) RequestExport(ctx context.Context) (Task, error) {
	c.mu.Lock()
	defer c.unlock()

	if c.state.Busy() {
		c.warnLocked(diagnosis.ErrBusy)
		return nil, diagnosis.ErrBusy
	}
	if c.result == nil {
		c.warnLocked(diagnosis.ErrNoResult)
		return nil, diagnosis.ErrNoResult
	}

	c.stable = StateResultReady
	c.generation++
	c.lastErr = nil
	c.warning = ""
	c.transitionLocked(StateExporting)

	gen := c.generation
	exporter := c.exporter
	result := c.result.Clone()

	return func() Outcome {
		start := time.Now()
		path, err := exporter.Export(ctx, result)
		return Outcome{Kind: TaskExport, Generation: gen, ReportPath: path, Err: err, Duration: time.Since(start)}
	}, nil
}

// Resolve applies an outcome if it belongs to the current generation and
// returns whether it was applied. Failures return to the prior stable state.
func (c *Controller) Resolve(o Outcome) bool {
	c.mu.Lock()
	defer c.unlock()

	applied := c.resolveLocked(o)
	if c.recorder != nil {
		c.recorder.Record(o.Kind.String(), o.Duration, o.Err, applied)
	}
	return applied
}

func (c *Controller) resolveLocked(o Outcome) bool {
	opLogger := c.logger.With(
		zap.String("task", o.Kind.String()),
		zap.Uint64("generation", o.Generation),
		zap.Duration("duration", o.Duration))

	if o.Generation != c.generation {
		opLogger.Info("discarding stale outcome", zap.Uint64("current_generation", c.generation))
		return false
	}

	switch o.Kind {
	case TaskAnalyze:
		if c.state != StateAnalyzing {
			return false
		}
		err := o.Err
		if err == nil && o.Result == nil {
			err = diagnosis.NewServiceError(diagnosis.ErrTypeDecode, "empty diagnosis", "")
		}
		if err != nil {
			c.failLocked(opLogger, err)
			return true
		}
		c.result = o.Result.Clone()
		c.reportPath = ""
		c.stable = StateResultReady
		c.transitionLocked(StateResultReady)
		opLogger.Info("diagnosis applied",
			zap.String("crop", c.result.Crop),
			zap.String("status", string(c.result.Status)))

	case TaskExport:
		if c.state != StateExporting {
			return false
		}
		if o.Err != nil {
			c.failLocked(opLogger, o.Err)
			return true
		}
		c.reportPath = o.ReportPath
		c.transitionLocked(StateResultReady)
		opLogger.Info("report exported", zap.String("path", o.ReportPath))

	default:
		return false
	}

	return true
}

// Analyze runs a full analyze request inline
func (c *Controller) Analyze(ctx context.Context) (Snapshot, error) {
	task, err := c.RequestAnalyze(ctx)
	if err != nil {
		return c.Snapshot(), err
	}
	o := task()
	c.Resolve(o)
	return c.Snapshot(), o.Err
}

// Export runs a full export request inline
func (c *Controller) Export(ctx context.Context) (Snapshot, error) {
	task, err := c.RequestExport(ctx)
	if err != nil {
		return c.Snapshot(), err
	}
	o := task()
	c.Resolve(o)
	return c.Snapshot(), o.Err
}

// Reset releases the selection and returns to Idle
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.unlock()

	c.picker.Reset()
	c.generation++
	c.result = nil
	c.reportPath = ""
	c.lastErr = nil
	c.warning = ""
	c.stable = StateIdle
	c.transitionLocked(StateIdle)
}

func (c *Controller) failLocked(opLogger *zap.Logger, err error) {
	c.lastErr = err
	opLogger.Error("request failed", zap.Error(err), zap.String("return_to", c.stable.String()))
	c.transitionLocked(c.stable)
}

func (c *Controller) warnLocked(err error) {
	c.warning = diagnosis.UserMessage(err)
	c.logger.Warn("action rejected", zap.Error(err), zap.String("state", c.state.String()))
}

func (c *Controller) transitionLocked(next State) {
	prev := c.state
	if prev == next {
		return
	}
	c.state = next
	c.logger.Debug("state transition", zap.String("from", prev.String()), zap.String("to", next.String()))
	c.pending = append(c.pending, transition{from: prev, to: next})
}

// unlock releases the lock, then notifies listeners of queued transitions
func (c *Controller) unlock() {
	pending := c.pending
	c.pending = nil
	listeners := c.listeners
	c.mu.Unlock()

	for _, t := range pending {
		for _, l := range listeners {
			l(t.from, t.to)
		}
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:        c.state,
		Generation:   c.generation,
		Image:        c.picker.Current(),
		Result:       c.result.Clone(),
		Presentation: presenter.Present(c.result),
		ReportPath:   c.reportPath,
		Err:          c.lastErr,
		Warning:      c.warning,
	}
}
