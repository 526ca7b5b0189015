package workflow

// State is the single source of truth for which workflow actions are enabled
type State int

const (
	StateIdle State = iota
	StateImageReady
	StateAnalyzing
	StateResultReady
	StateExporting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateImageReady:
		return "ImageReady"
	case StateAnalyzing:
		return "Analyzing"
	case StateResultReady:
		return "ResultReady"
	case StateExporting:
		return "Exporting"
	default:
		return "Unknown"
	}
}

// Busy reports whether a request is outstanding
func (s State) Busy() bool {
	return s == StateAnalyzing || s == StateExporting
}

// Trigger labels for the analyze action
const (
	AnalyzeLabel   = "Analyze Crop"
	AnalyzingLabel = "Analyzing..."
)

// TaskKind identifies which request produced an outcome
type TaskKind int

const (
	TaskAnalyze TaskKind = iota
	TaskExport
)

func (k TaskKind) String() string {
	if k == TaskExport {
		return "export"
	}
	return "analyze"
}

// Listener observes state transitions. It runs after the controller lock is released.
type Listener func(from, to State)
