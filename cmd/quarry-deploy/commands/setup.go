package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"

	"github.com/quarry-ml/quarry-deploy/internal/config"
	"github.com/quarry-ml/quarry-deploy/internal/stack"
)

// loadAWSConfig resolves the SDK configuration for the configured region and
// credential profile.
func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, awscfg.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return awsCfg, nil
}

// buildDescriptor reads the template body and assembles the immutable stack
// identity from configuration.
func buildDescriptor(cfg *config.Config) (stack.Descriptor, error) {
	body, err := os.ReadFile(cfg.TemplatePath) // #nosec G304 -- path is from trusted config
	if err != nil {
		return stack.Descriptor{}, fmt.Errorf("read template %q: %w", cfg.TemplatePath, err)
	}
	return stack.Descriptor{
		Name:         cfg.StackName,
		Region:       cfg.Region,
		Profile:      cfg.Profile,
		TemplateBody: string(body),
		Capabilities: cfg.Capabilities,
	}, nil
}

// newManager wires a CloudFormation-backed client into a lifecycle manager
// for the descriptor.
func newManager(cfg *config.Config, awsCfg aws.Config, desc stack.Descriptor) *stack.Manager {
	client := stack.NewClient(cloudformation.NewFromConfig(awsCfg))
	return stack.NewManager(client, desc, cfg.PollInterval.Std(), stack.Timeouts{
		Deploy:   cfg.Timeouts.Deploy.Std(),
		Destroy:  cfg.Timeouts.Destroy.Std(),
		Recovery: cfg.Timeouts.Recovery.Std(),
	})
}
