package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yildizm/LeafScan/internal/ui"
	"github.com/yildizm/LeafScan/internal/watcher"
)

var (
	tuiWatchDir  string
	tuiOutputDir string
)

func newTUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui [image]",
		Short: "Interactive crop diagnosis",
		Long: `Open the interactive diagnosis screen. Pick an image, analyze it and
download the PDF report without leaving the terminal.

Logs go to leafscan.log unless log.file is configured.

Examples:
  leafscan tui
  leafscan tui leaf.jpg
  leafscan tui --watch ./captures`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTUI,
	}

	cmd.Flags().StringVarP(&tuiWatchDir, "watch", "w", "", "select new images from this directory as they appear")
	cmd.Flags().StringVar(&tuiOutputDir, "output-dir", "", "directory for crop_report.pdf")

	return cmd
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	a, err := newApp(cfg, appOptions{LogFile: defaultTUILogFile, ReportDir: tuiOutputDir})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := ui.Options{
		Controller: a.controller,
		Stats:      a.stats,
		Context:    ctx,
	}
	if len(args) == 1 {
		if err := validateFilePath(args[0]); err != nil {
			return err
		}
		opts.InitialImage = args[0]
	}

	if tuiWatchDir != "" {
		if err := validateWatchDirPath(tuiWatchDir); err != nil {
			return fmt.Errorf("invalid directory: %w", err)
		}
		w, err := watcher.New(tuiWatchDir, watcher.Options{Extensions: cfg.Watch.Extensions, Settle: cfg.Watch.Settle}, a.logger)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()

		go func() {
			if err := w.Run(ctx); err != nil {
				a.logger.Sugar().Warnw("watcher stopped", "error", err)
			}
		}()
		opts.Paths = w.Paths()
	}

	if err := ui.Run(opts); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if isVerbose() {
		fmt.Fprintln(os.Stderr, a.stats.Summary(nil))
	}
	return nil
}
