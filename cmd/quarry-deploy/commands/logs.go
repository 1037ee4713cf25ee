package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/spf13/cobra"

	"github.com/quarry-ml/quarry-deploy/internal/config"
	"github.com/quarry-ml/quarry-deploy/internal/endpoint"
)

// Logs returns the logs command.
func Logs() *cobra.Command {
	var configPath string
	var since time.Duration
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print recent logs from the deployed endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd.Context(), configPath, since, limit)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the deploy configuration file")
	cmd.Flags().DurationVar(&since, "since", 15*time.Minute, "How far back to read logs")
	cmd.Flags().IntVar(&limit, "limit", 200, "Maximum number of log events to print")

	return cmd
}

// runLogs reads and prints recent endpoint log events.
func runLogs(ctx context.Context, configPath string, since time.Duration, limit int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.EndpointName == "" {
		return fmt.Errorf("endpoint_name is not configured")
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	events, err := endpoint.RecentLogs(ctx, cloudwatchlogs.NewFromConfig(awsCfg), cfg.EndpointName, since, limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Printf("no log events for endpoint %s in the last %s\n", cfg.EndpointName, since)
		return nil
	}

	for _, e := range events {
		fmt.Printf("%s  %s\n", e.Timestamp.Format(time.RFC3339), strings.TrimRight(e.Message, "\n"))
	}
	return nil
}
