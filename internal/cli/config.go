package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yildizm/LeafScan/internal/client"
	"github.com/yildizm/LeafScan/internal/config"
	"github.com/yildizm/LeafScan/internal/emoji"
	"github.com/yildizm/LeafScan/internal/report"
)

// newConfigCommand creates the config command with subcommands
func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage LeafScan configuration",
		Long: `Manage LeafScan configuration files and settings.

The service address, report directory, watch filter and cache size all
come from configuration. Global flags such as --service-url are applied
on top, so show and validate report what a diagnose run would use.`,
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

// newConfigInitCommand creates the config init subcommand
func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		minimal    bool
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Write a LeafScan configuration file with default values.

The full file documents the service, report, output, ui, log, watch and
cache sections. Use --minimal for just the service address and report
directory.`,
		Example: `  # Create .leafscan.yaml in the current directory
  leafscan config init

  # Service address and report directory only
  leafscan config init --minimal

  # User-level config
  leafscan config init --output ~/.config/leafscan/config.yaml --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				outputPath = ".leafscan.yaml"
			}
			if !force && fileExists(outputPath) {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", outputPath)
			}

			if dir := filepath.Dir(outputPath); dir != "." && dir != "/" {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", dir, err)
				}
			}

			content := config.SampleConfig()
			if minimal {
				content = config.MinimalSampleConfig()
			}
			if err := os.WriteFile(outputPath, []byte(content), 0o600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Configuration file created at: %s\n", emoji.GetEmoji("success"), outputPath)
			fmt.Fprintf(out, "%s Point service.base_url at your diagnosis service, then run: leafscan ping\n", emoji.GetEmoji("info"))
			return nil
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path for config file (default: .leafscan.yaml)")
	initCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "write only the service and report sections")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing config file")

	return initCmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration after defaults, config files, LEAFSCAN_
environment variables and global flags are merged.

The text format resolves the service endpoints and the path the next
report will be saved to. yaml and json print the merged settings.`,
		Example: `  # Endpoints and report target
  leafscan config show

  # Against another service
  leafscan --service-url http://10.0.0.5:5000 config show

  # Merged settings as YAML
  leafscan config show --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEffectiveConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				view, err := resolveConfig(cfg)
				if err != nil {
					return err
				}
				view.print(out)
			case "json":
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config to JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
			case "yaml":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config to YAML: %w", err)
				}
				fmt.Fprint(out, string(data))
			default:
				return fmt.Errorf("unsupported format: %s (use text, yaml or json)", format)
			}
			return nil
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, yaml, json)")

	return showCmd
}

// newConfigValidateCommand creates the config validate subcommand
func newConfigValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration can drive a diagnosis",
		Long: `Validate the effective LeafScan configuration.

Beyond YAML syntax and field values, checks that the service address is
an absolute URL the client accepts and that the report directory is
usable. Nothing is sent to the service; use "leafscan ping" for that.`,
		Example: `  leafscan config validate
  leafscan config validate --config /path/to/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := loadEffectiveConfig(cmd)
			if err == nil {
				err = cfg.Validate()
			}
			var view *configView
			if err == nil {
				view, err = resolveConfig(cfg)
			}
			if err != nil {
				fmt.Fprintf(out, "%s Configuration validation failed:\n   %v\n", emoji.GetEmoji("error"), err)
				return err
			}

			fmt.Fprintf(out, "%s Configuration is valid\n\n", emoji.GetEmoji("success"))
			view.print(out)
			return nil
		},
	}

	return validateCmd
}

// newConfigPathCommand creates the config path subcommand
func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Long: `List the files LeafScan reads configuration from, highest priority
first, and which of them exist.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration file search paths (highest priority first):")

			for i, path := range config.GetConfigPaths() {
				mark := emoji.GetEmoji("error") + " not found"
				if fileExists(path) {
					mark = emoji.GetEmoji("success") + " exists"
				}
				fmt.Fprintf(out, "  %d. %s  %s\n", i+1, path, mark)
			}

			fmt.Fprintf(out, "\nIn use: %s\n", configSource())
			fmt.Fprintln(out, "LEAFSCAN_ environment variables and a local .env file override file settings.")
		},
	}
}

// loadEffectiveConfig loads configuration the way workflow commands do
func loadEffectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlagOverrides(cmd, cfg)
	return cfg, nil
}

// configView is the configuration as a diagnose run would see it
type configView struct {
	Source        string
	AnalyzeURL    string
	ReportURL     string
	HealthURL     string
	Timeout       string
	ReportDir     string
	ReportTarget  string
	ReportDirNote string
	Overwrite     bool
	Format        string
	Theme         string
	Log           string
	Watch         string
	Cache         string
}

// resolveConfig derives endpoints and the report target from cfg
func resolveConfig(cfg *config.Config) (*configView, error) {
	svc, err := client.New(serviceConfig(cfg), nil)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	dir := cfg.Report.OutputDir
	if dir == "" {
		dir = "."
	}
	note, err := reportDirStatus(dir)
	if err != nil {
		return nil, err
	}
	target, err := report.TargetPath(dir, cfg.Report.Overwrite)
	if err != nil {
		return nil, err
	}

	clientCfg := serviceConfig(cfg)
	return &configView{
		Source:        configSource(),
		AnalyzeURL:    svc.Endpoint(client.AnalyzePath),
		ReportURL:     svc.Endpoint(client.ReportPath),
		HealthURL:     svc.Endpoint(client.HealthPath),
		Timeout:       clientCfg.Timeout.String(),
		ReportDir:     dir,
		ReportTarget:  target,
		ReportDirNote: note,
		Overwrite:     cfg.Report.Overwrite,
		Format:        cfg.Output.DefaultFormat,
		Theme:         cfg.UI.Theme,
		Log:           logSummary(cfg),
		Watch:         fmt.Sprintf("%s, settle %s", strings.Join(cfg.Watch.Extensions, " "), cfg.Watch.Settle),
		Cache:         cacheSummary(cfg.Cache.Size),
	}, nil
}

func (v *configView) print(w io.Writer) {
	fmt.Fprintf(w, "%s LeafScan configuration (%s)\n", emoji.GetEmoji("leaf"), v.Source)
	fmt.Fprintf(w, "  Service timeout: %s\n", v.Timeout)
	fmt.Fprintf(w, "    analyze: POST %s\n", v.AnalyzeURL)
	fmt.Fprintf(w, "    report:  POST %s\n", v.ReportURL)
	fmt.Fprintf(w, "    health:  GET  %s\n", v.HealthURL)

	fmt.Fprintf(w, "  %s Next report: %s\n", emoji.GetEmoji("report"), v.ReportTarget)
	if v.ReportDirNote != "" {
		fmt.Fprintf(w, "    %s\n", v.ReportDirNote)
	}
	if v.Overwrite {
		fmt.Fprintf(w, "    existing %s is replaced\n", report.FileName)
	}

	fmt.Fprintf(w, "  Output format: %s, theme %s\n", v.Format, v.Theme)
	fmt.Fprintf(w, "  Log: %s\n", v.Log)
	fmt.Fprintf(w, "  %s Watch: %s\n", emoji.GetEmoji("watch"), v.Watch)
	fmt.Fprintf(w, "  Diagnosis cache: %s\n", v.Cache)
}

// reportDirStatus rejects a report directory that is a file and notes one that does not exist yet
func reportDirStatus(dir string) (string, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Sprintf("%s is created on first export", dir), nil
	}
	if err != nil {
		return "", fmt.Errorf("report directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("report directory %s is not a directory", dir)
	}
	return "", nil
}

func configSource() string {
	if cfgFile != "" {
		return cfgFile
	}
	if path, found := config.FindConfigFile(); found {
		return path
	}
	return "defaults"
}

func logSummary(cfg *config.Config) string {
	if cfg.Log.File != "" {
		return fmt.Sprintf("%s to %s", cfg.Log.Level, cfg.Log.File)
	}
	return fmt.Sprintf("%s to stderr (tui: %s)", cfg.Log.Level, defaultTUILogFile)
}

func cacheSummary(size int) string {
	if size <= 0 {
		return "disabled"
	}
	return fmt.Sprintf("%d entries", size)
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
