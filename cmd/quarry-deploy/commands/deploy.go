package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"

	"github.com/quarry-ml/quarry-deploy/internal/artifact"
	"github.com/quarry-ml/quarry-deploy/internal/config"
	"github.com/quarry-ml/quarry-deploy/internal/preflight"
	"github.com/quarry-ml/quarry-deploy/internal/stack"
)

// Deploy returns the deploy command.
func Deploy() *cobra.Command {
	var configPath string
	var paramFlags []string

	cmd := &cobra.Command{
		Use:   "deploy [Key=Value ...]",
		Short: "Publish the model package and create or update the stack",
		Long: `Deploy packages the inference code, publishes it to the fixed S3
location, and drives the CloudFormation stack to the new version.

Trailing Key=Value arguments and --param flags override the base template
parameters from the config file.

A stack stuck in ROLLBACK_COMPLETE is deleted and the deletion waited out
before the deployment proceeds. A stack whose state cannot be determined
blocks the deployment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd.Context(), configPath, paramFlags, args)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the deploy configuration file")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "Parameter override as Key=Value (repeatable)")

	return cmd
}

// runDeploy executes the full deploy flow: preflight, lock, publish,
// ensure-deployable, deploy.
func runDeploy(ctx context.Context, configPath string, paramFlags, extraArgs []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	desc, err := buildDescriptor(cfg)
	if err != nil {
		return err
	}

	overrides, err := parseParamFlags(paramFlags)
	if err != nil {
		return err
	}
	params, err := stack.MergeParameters(cfg.Parameters, overrides, extraArgs)
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

	publisher := artifact.NewPublisher(s3.NewFromConfig(awsCfg), cfg.Artifact.Bucket, cfg.Artifact.Key)
	loc, err := publisher.Publish(ctx, cfg.Artifact.CodeDir)
	if err != nil {
		return err
	}

	mgr := newManager(cfg, awsCfg, desc)
	if err := mgr.EnsureDeployable(ctx); err != nil {
		return err
	}

	outcome, err := mgr.Deploy(ctx, stack.Request{
		Parameters:     params,
		ArtifactBucket: loc.Bucket,
		ArtifactKey:    loc.Key,
	})
	if err != nil {
		return err
	}

	fmt.Printf("deploy complete: %s\n", outcome)
	return nil
}

// parseParamFlags converts repeated --param Key=Value flags into a map.
func parseParamFlags(flags []string) (map[string]string, error) {
	params := make(map[string]string, len(flags))
	for _, f := range flags {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected Key=Value", f)
		}
		params[key] = value
	}
	return params, nil
}
