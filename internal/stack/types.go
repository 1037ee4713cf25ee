// Package stack manages the lifecycle of the single CloudFormation stack
// backing the quarry inference deployment: probing its current state,
// recovering from unrecoverable states, driving create/update/delete
// operations to a terminal state, and reporting status.
package stack

import (
	"fmt"
	"sort"
	"strings"
)

// Descriptor is the immutable identity of the managed stack. It is built once
// at process start from configuration and threaded through every component
// call; nothing in this package reads ambient state.
type Descriptor struct {
	// Name is the CloudFormation stack name.
	Name string
	// Region is the AWS region the stack lives in.
	Region string
	// Profile is the shared-config credential profile, empty for default.
	Profile string
	// TemplateBody is the full CloudFormation template text.
	TemplateBody string
	// Capabilities are the CloudFormation capabilities acknowledged for this
	// stack (e.g. CAPABILITY_NAMED_IAM for the endpoint execution role).
	Capabilities []string
}

// Request is a single deployment request: the merged parameter set plus the
// published artifact location. Constructed per invocation, never persisted.
type Request struct {
	// Parameters is the base parameter set merged with caller overrides.
	Parameters map[string]string
	// ArtifactBucket and ArtifactKey reference the published model package.
	ArtifactBucket string
	ArtifactKey    string
}

// Outcome is the terminal result of a deploy or destroy operation.
type Outcome string

// Operation outcomes. The remote provider remains the sole source of truth;
// outcomes are reported to the caller, never persisted.
const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeDeleted Outcome = "deleted"
	OutcomeNoOp    Outcome = "no-op"
	OutcomeFailed  Outcome = "failed"
)

// MergeParameters merges the fixed base parameter set with flag overrides and
// trailing Key=Value pass-through arguments. Later sources win: base, then
// overrides, then extras. Malformed extras are rejected.
func MergeParameters(base, overrides map[string]string, extras []string) (map[string]string, error) {
	merged := make(map[string]string, len(base)+len(overrides)+len(extras))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	for _, arg := range extras {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter override %q: expected Key=Value", arg)
		}
		merged[key] = value
	}
	return merged, nil
}

// sortedParameterKeys returns the parameter names in deterministic order so
// requests and log output are stable across invocations.
func sortedParameterKeys(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
