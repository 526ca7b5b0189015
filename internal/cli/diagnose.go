package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/LeafScan/internal/emoji"
	"github.com/yildizm/LeafScan/internal/formatter"
	"github.com/yildizm/LeafScan/internal/picker"
	"github.com/yildizm/LeafScan/internal/workflow"
)

var (
	diagnoseReport     bool
	diagnoseOutputDir  string
	diagnoseOutputFile string
	diagnoseTimeout    time.Duration
)

func newDiagnoseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose [image]",
		Short: "Diagnose one leaf image",
		Long: `Submit a leaf image to the diagnosis service and print the diagnosis.

With --report the PDF report for the diagnosis is downloaded as crop_report.pdf
into the report directory.

Examples:
  leafscan diagnose leaf.jpg
  leafscan diagnose --report --output-dir ./reports leaf.jpg
  leafscan diagnose -o json leaf.png`,
		Args: cobra.ExactArgs(1),
		RunE: runDiagnose,
	}

	cmd.Flags().BoolVarP(&diagnoseReport, "report", "r", false, "download the PDF report")
	cmd.Flags().StringVar(&diagnoseOutputDir, "output-dir", "", "directory for crop_report.pdf")
	cmd.Flags().StringVar(&diagnoseOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().DurationVar(&diagnoseTimeout, "timeout", 0, "overall deadline (0 = none)")

	return cmd
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := validateFilePath(path); err != nil {
		return err
	}

	f, err := formatter.New(getOutputFormat(), useColor() && diagnoseOutputFile == "")
	if err != nil {
		return err
	}

	a, err := newApp(GetGlobalConfig(), appOptions{ReportDir: diagnoseOutputDir})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if diagnoseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, diagnoseTimeout)
		defer cancel()
	}

	d, err := diagnoseFile(ctx, a.controller, path, diagnoseReport)
	if err != nil {
		return err
	}

	output, err := f.Format(d)
	if err != nil {
		return fmt.Errorf("failed to format diagnosis: %w", err)
	}
	return handleOutputDestination(cmd, output, diagnoseOutputFile)
}

// diagnoseFile runs select, analyze and optionally export for one image
func diagnoseFile(ctx context.Context, ctrl *workflow.Controller, path string, withReport bool) (*formatter.Diagnosis, error) {
	img, err := picker.Open(path)
	if err != nil {
		return nil, err
	}
	if err := ctrl.SelectImage(img); err != nil {
		return nil, err
	}

	snap, err := ctrl.Analyze(ctx)
	if err != nil {
		return nil, fmt.Errorf("diagnosis failed for %s: %w", img.Name, err)
	}

	if withReport {
		snap, err = ctrl.Export(ctx)
		if err != nil {
			return nil, fmt.Errorf("report export failed for %s: %w", img.Name, err)
		}
	}

	return &formatter.Diagnosis{
		Image:      img.Name,
		Result:     snap.Result,
		ReportPath: snap.ReportPath,
		Time:       time.Now(),
	}, nil
}

// handleOutputDestination writes output to file or stdout
func handleOutputDestination(cmd *cobra.Command, output []byte, outputFile string) error {
	if outputFile == "" {
		_, err := cmd.OutOrStdout().Write(output)
		return err
	}

	if err := writeOutputBytesToFile(output, outputFile); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "%s Output saved to: %s\n", emoji.GetEmoji("success"), outputFile)
	}
	return nil
}

func validateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	return nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return file.Sync()
}
