package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yildizm/LeafScan/internal/diagnosis"
	"github.com/yildizm/LeafScan/internal/emoji"
	"github.com/yildizm/LeafScan/internal/formatter"
	"github.com/yildizm/LeafScan/internal/watcher"
	"github.com/yildizm/LeafScan/internal/workflow"
)

var (
	watchReport    bool
	watchOutputDir string
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Diagnose leaf images as they appear in a directory",
		Long: `Watch a directory and diagnose every new image once it has finished
being written. Each image replaces the previous selection, exactly as if it
had been picked by hand. Images that arrive while a diagnosis is running
are queued and handled in arrival order. Press Ctrl+C to stop watching.

Examples:
  leafscan watch ./captures
  leafscan watch --report --output-dir ./reports ./captures`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().BoolVarP(&watchReport, "report", "r", false, "download a PDF report for each diagnosis")
	cmd.Flags().StringVar(&watchOutputDir, "output-dir", "", "directory for crop_report.pdf")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if err := validateWatchDirPath(dir); err != nil {
		return fmt.Errorf("invalid directory: %w", err)
	}

	cfg := GetGlobalConfig()
	f, err := formatter.New(getOutputFormat(), useColor())
	if err != nil {
		return err
	}

	a, err := newApp(cfg, appOptions{ReportDir: watchOutputDir})
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := watcher.New(dir, watcher.Options{Extensions: cfg.Watch.Extensions, Settle: cfg.Watch.Settle}, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
		}
	}()

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "%s Watching directory: %s\n", emoji.GetEmoji("watch"), dir)
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop...\n\n")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = runWatchLoop(ctx, w, a.controller, f, cmd.OutOrStdout())

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "\n%s\n", a.stats.Summary(nil))
	}
	return err
}

// runWatchLoop diagnoses every settled path until ctx is done
func runWatchLoop(ctx context.Context, w *watcher.Watcher, ctrl *workflow.Controller, f formatter.Formatter, out io.Writer) error {
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	for path := range w.Paths() {
		if err := handleWatchedImage(ctx, ctrl, f, out, path); err != nil {
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", emoji.GetEmoji("error"), filepath.Base(path), diagnosis.UserMessage(err))
		}
	}

	return <-errCh
}

// handleWatchedImage diagnoses one image and writes the formatted result
func handleWatchedImage(ctx context.Context, ctrl *workflow.Controller, f formatter.Formatter, out io.Writer, path string) error {
	d, err := diagnoseFile(ctx, ctrl, path, watchReport)
	if err != nil {
		return err
	}

	output, err := f.Format(d)
	if err != nil {
		return fmt.Errorf("failed to format diagnosis: %w", err)
	}
	_, err = out.Write(output)
	return err
}

// validateWatchDirPath validates that a directory path is safe to watch
func validateWatchDirPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty directory path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot watch a file, must be a directory")
	}

	return nil
}
