package commands

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"

	"github.com/quarry-ml/quarry-deploy/internal/config"
	"github.com/quarry-ml/quarry-deploy/internal/preflight"
	"github.com/quarry-ml/quarry-deploy/internal/stack"
)

// Destroy returns the destroy command.
func Destroy() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the stack and wait for the deletion to complete",
		Long: `Destroy issues an unconditional stack deletion and blocks until the
stack is gone or the destroy timeout elapses.

The published model package in S3 is left in place; only the stack and the
resources it manages are removed.

WARNING: this tears down the inference endpoint. Re-deploying recreates it
from scratch.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDestroy(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the deploy configuration file")

	return cmd
}

// runDestroy executes the destroy flow: preflight, lock, delete, wait.
func runDestroy(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	desc, err := buildDescriptor(cfg)
	if err != nil {
		return err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}
	if err := preflight.CheckAccount(ctx, sts.NewFromConfig(awsCfg), cfg.AccountID); err != nil {
		return err
	}

	lock, err := stack.AcquireLock(stack.DefaultLockDir(), desc)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	outcome, err := newManager(cfg, awsCfg, desc).Destroy(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("destroy complete: %s\n", outcome)
	return nil
}
