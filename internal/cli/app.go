package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yildizm/LeafScan/internal/cache"
	"github.com/yildizm/LeafScan/internal/client"
	"github.com/yildizm/LeafScan/internal/config"
	"github.com/yildizm/LeafScan/internal/logger"
	"github.com/yildizm/LeafScan/internal/monitor"
	"github.com/yildizm/LeafScan/internal/picker"
	"github.com/yildizm/LeafScan/internal/report"
	"github.com/yildizm/LeafScan/internal/workflow"
)

// defaultTUILogFile keeps log lines off the alternate screen
const defaultTUILogFile = "leafscan.log"

// app is the wired workflow shared by the tui, diagnose and watch commands
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	client     *client.Client
	controller *workflow.Controller
	stats      *monitor.Tracker
}

// appOptions tweaks how the app is built for a command
type appOptions struct {
	// LogFile overrides cfg.Log.File when the config leaves it empty
	LogFile string

	// ReportDir overrides cfg.Report.OutputDir when set
	ReportDir string
}

// newApp builds logger, client, optional cache, exporter and controller from cfg
func newApp(cfg *config.Config, opts appOptions) (*app, error) {
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = opts.LogFile
	}
	log, err := logger.New(logger.Options{Level: cfg.Log.Level, File: logFile, Verbose: isVerbose()})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	svc, err := client.New(serviceConfig(cfg), log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to create service client: %w", err)
	}

	analyzer, err := cache.Wrap(svc, cfg.Cache.Size, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to create diagnosis cache: %w", err)
	}

	reportDir := cfg.Report.OutputDir
	if opts.ReportDir != "" {
		reportDir = opts.ReportDir
	}
	exporter := report.NewExporter(svc, report.Options{Dir: reportDir, Overwrite: cfg.Report.Overwrite}, log)

	stats := monitor.NewTracker()
	controller := workflow.New(picker.New(), analyzer, exporter, log)
	controller.SetRecorder(stats)

	log.Debug("workflow ready",
		zap.String("service", svc.BaseURL()),
		zap.String("report_dir", reportDir),
		zap.Int("cache_size", cfg.Cache.Size))

	return &app{
		cfg:        cfg,
		logger:     log,
		client:     svc,
		controller: controller,
		stats:      stats,
	}, nil
}

// serviceConfig maps the service section onto client settings; zero values keep client defaults
func serviceConfig(cfg *config.Config) *client.Config {
	clientCfg := client.DefaultConfig()
	if cfg.Service.BaseURL != "" {
		clientCfg.BaseURL = cfg.Service.BaseURL
	}
	if cfg.Service.Timeout > 0 {
		clientCfg.Timeout = cfg.Service.Timeout
	}
	if cfg.Service.UserAgent != "" {
		clientCfg.UserAgent = cfg.Service.UserAgent
	}
	return clientCfg
}

// Close releases the selection and flushes the logger
func (a *app) Close() {
	a.controller.Reset()
	_ = a.logger.Sync()
}
