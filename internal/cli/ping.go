package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/LeafScan/internal/client"
	"github.com/yildizm/LeafScan/internal/diagnosis"
	"github.com/yildizm/LeafScan/internal/emoji"
)

var pingTimeout time.Duration

func newPingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the diagnosis service is reachable",
		Long: `Call the service health endpoint and report whether it answered.

Examples:
  leafscan ping
  leafscan ping --service-url http://10.0.0.5:5000`,
		Args: cobra.NoArgs,
		RunE: runPing,
	}

	cmd.Flags().DurationVar(&pingTimeout, "timeout", 5*time.Second, "health check timeout")

	return cmd
}

func runPing(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	clientCfg := client.DefaultConfig()
	if cfg.Service.BaseURL != "" {
		clientCfg.BaseURL = cfg.Service.BaseURL
	}
	clientCfg.Timeout = pingTimeout
	svc, err := client.New(clientCfg, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	out := cmd.OutOrStdout()
	start := time.Now()
	health, err := svc.HealthCheck(ctx)
	if err != nil {
		fmt.Fprintf(out, "%s %s: %s\n", emoji.GetEmoji("error"), svc.BaseURL(), diagnosis.UserMessage(err))
		return err
	}

	fmt.Fprintf(out, "%s %s: %s (%s)\n", emoji.GetEmoji("success"), svc.BaseURL(), health.Status,
		time.Since(start).Round(time.Millisecond))
	return nil
}
