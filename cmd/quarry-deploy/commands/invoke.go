package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/spf13/cobra"

	"github.com/quarry-ml/quarry-deploy/internal/config"
	"github.com/quarry-ml/quarry-deploy/internal/endpoint"
)

// defaultSmokeText is embedded when invoke is called without arguments.
const defaultSmokeText = "Represent this sentence for searching relevant passages: smoke test"

// Invoke returns the invoke command.
func Invoke() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "invoke [text ...]",
		Short: "Smoke-test the deployed endpoint with an embedding request",
		Long: `Invoke sends the given texts (or a built-in sample) to the deployed
SageMaker endpoint and reports the shape of the embedding matrix it returns.
Useful after a deploy to confirm the endpoint serves real traffic.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoke(cmd.Context(), configPath, args)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the deploy configuration file")

	return cmd
}

// runInvoke sends an embedding request and prints the response shape.
func runInvoke(ctx context.Context, configPath string, texts []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.EndpointName == "" {
		return fmt.Errorf("endpoint_name is not configured")
	}
	if len(texts) == 0 {
		texts = []string{defaultSmokeText}
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	result, err := endpoint.Invoke(ctx, sagemakerruntime.NewFromConfig(awsCfg), cfg.EndpointName, texts)
	if err != nil {
		return err
	}

	fmt.Printf("endpoint %s returned %d vector(s) of dimension %d in %s\n",
		cfg.EndpointName, result.Rows, result.Dimension, result.Latency.Round(time.Millisecond))
	return nil
}
