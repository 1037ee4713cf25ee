// Package config loads the fixed deployment configuration consumed by the
// lifecycle manager: stack identity, template reference, artifact storage
// location, endpoint name, base parameters, and wait tuning.
package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default wait tuning. CloudFormation stacks backing a serverless endpoint
// typically settle within minutes; the bounds exist so a stalled operation
// cannot block an invocation forever.
const (
	defaultDeployTimeout   = 30 * time.Minute
	defaultDestroyTimeout  = 30 * time.Minute
	defaultRecoveryTimeout = 20 * time.Minute
	defaultPollInterval    = 5 * time.Second
)

// defaultArtifactKey is the fixed S3 object key the model package is
// published to. Not versioned per deployment: a deploy always overwrites the
// same location before the new stack version is applied.
const defaultArtifactKey = "sagemaker-inference/model.tar.gz"

// Config is the fixed configuration for one managed stack. Loaded once at
// process start and threaded through every component call; never mutated.
type Config struct {
	// StackName is the CloudFormation stack name.
	StackName string `yaml:"stack_name"`
	// Region is the AWS region.
	Region string `yaml:"region"`
	// Profile is the shared-config credential profile, empty for default.
	Profile string `yaml:"profile"`
	// AccountID, when set, must match the caller's STS account before any
	// mutating command proceeds.
	AccountID string `yaml:"account_id"`
	// TemplatePath is the CloudFormation template file.
	TemplatePath string `yaml:"template_path"`
	// EndpointName is the SageMaker endpoint the stack provisions; used by
	// the invoke and logs commands.
	EndpointName string `yaml:"endpoint_name"`

	Artifact ArtifactConfig `yaml:"artifact"`

	// Parameters is the base CloudFormation parameter set.
	Parameters map[string]string `yaml:"parameters"`
	// Capabilities acknowledged for the stack, e.g. CAPABILITY_NAMED_IAM.
	Capabilities []string `yaml:"capabilities"`

	Timeouts TimeoutConfig `yaml:"timeouts"`
	// PollInterval is the delay between state probes while waiting.
	PollInterval Duration `yaml:"poll_interval"`
}

// ArtifactConfig locates the published model package.
type ArtifactConfig struct {
	// Bucket is the S3 bucket the package is uploaded to.
	Bucket string `yaml:"bucket"`
	// Key is the fixed object key, overwritten on every deploy.
	Key string `yaml:"key"`
	// CodeDir is the directory packaged into the model archive.
	CodeDir string `yaml:"code_dir"`
}

// TimeoutConfig bounds each blocking wait.
type TimeoutConfig struct {
	Deploy   Duration `yaml:"deploy"`
	Destroy  Duration `yaml:"destroy"`
	Recovery Duration `yaml:"recovery"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"5m\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// applyDefaults fills in unset tuning values.
func (c *Config) applyDefaults() {
	if c.Artifact.Key == "" {
		c.Artifact.Key = defaultArtifactKey
	}
	if c.Timeouts.Deploy == 0 {
		c.Timeouts.Deploy = Duration(defaultDeployTimeout)
	}
	if c.Timeouts.Destroy == 0 {
		c.Timeouts.Destroy = Duration(defaultDestroyTimeout)
	}
	if c.Timeouts.Recovery == 0 {
		c.Timeouts.Recovery = Duration(defaultRecoveryTimeout)
	}
	if c.PollInterval == 0 {
		c.PollInterval = Duration(defaultPollInterval)
	}
}

// Validate checks required fields and returns one error describing every
// problem found.
func (c *Config) Validate() error {
	var problems []string
	if c.StackName == "" {
		problems = append(problems, "stack_name is required")
	}
	if c.Region == "" {
		problems = append(problems, "region is required")
	}
	if c.TemplatePath == "" {
		problems = append(problems, "template_path is required")
	}
	if c.Artifact.Bucket == "" {
		problems = append(problems, "artifact.bucket is required")
	}
	if c.Artifact.CodeDir == "" {
		problems = append(problems, "artifact.code_dir is required")
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}
