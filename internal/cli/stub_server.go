package cli

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/yildizm/LeafScan/internal/emoji"
	"github.com/yildizm/LeafScan/internal/logger"
	"github.com/yildizm/LeafScan/internal/stubserver"
)

var stubAddr string

func newStubServerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub-server",
		Short: "Run a local stand-in diagnosis service",
		Long: `Serve /api/crop-diagnosis, /api/generate-report and /api/test with
deterministic answers so the client can be tried without the real model.
The same image always gets the same diagnosis.

Examples:
  leafscan stub-server
  leafscan stub-server --addr :8080`,
		Args: cobra.NoArgs,
		RunE: runStubServer,
	}

	cmd.Flags().StringVar(&stubAddr, "addr", "127.0.0.1:5000", "listen address")

	return cmd
}

func runStubServer(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File, Verbose: isVerbose()})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if !isVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	listener, err := net.Listen("tcp", stubAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", stubAddr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "%s Stub diagnosis service on http://%s\n", emoji.GetEmoji("server"), listener.Addr())
	return stubserver.New(log).Serve(ctx, listener, 5*time.Second)
}
