package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/LeafScan/internal/picker"
	"github.com/yildizm/LeafScan/internal/workflow"
)

// Message types exchanged between commands and the workflow model
type imageSelectedMsg struct {
	path  string
	image *picker.Image
}

type imageOpenFailedMsg struct {
	path string
	err  error
}

type taskDoneMsg struct {
	outcome workflow.Outcome
}

type watchedPathMsg struct {
	path string
}

type watchClosedMsg struct{}

// openImageCommand loads path from disk off the update loop
func openImageCommand(open func(string) (*picker.Image, error), path string) tea.Cmd {
	return func() tea.Msg {
		img, err := open(path)
		if err != nil {
			return imageOpenFailedMsg{path: path, err: err}
		}
		return imageSelectedMsg{path: path, image: img}
	}
}

// runTaskCommand performs a controller task and reports its outcome
func runTaskCommand(task workflow.Task) tea.Cmd {
	return func() tea.Msg {
		return taskDoneMsg{outcome: task()}
	}
}

// waitForPathCommand blocks until the watcher reports the next image
func waitForPathCommand(paths <-chan string) tea.Cmd {
	if paths == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-paths
		if !ok {
			return watchClosedMsg{}
		}
		return watchedPathMsg{path: path}
	}
}
