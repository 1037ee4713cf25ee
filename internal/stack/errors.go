package stack

import (
	"fmt"
	"strings"
)

// ProbeError reports that the state query itself failed. It is mapped to
// StateUnknown by the probe and must never be treated as stack absence:
// proceeding against an indeterminate state could mask a transient failure
// as "safe to create".
type ProbeError struct {
	Stack string
	Cause error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	return fmt.Sprintf("query stack %q: %v", e.Stack, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ProbeError) Unwrap() error { return e.Cause }

// RecoveryError reports that the stack could not be brought into a deployable
// state. Fatal: the deployment is aborted and no partial retry is attempted.
type RecoveryError struct {
	Stack  string
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *RecoveryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stack %q is not deployable: %s", e.Stack, e.Reason)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if hint := classifyHint(e.Cause); hint != "" {
		fmt.Fprintf(&b, " [hint: %s]", hint)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *RecoveryError) Unwrap() error { return e.Cause }

// DeployError reports that the provider rejected or rolled back a
// create/update/delete. The provider's diagnostic text is passed through
// unmodified so operators can act on it directly; the operation is never
// retried automatically.
type DeployError struct {
	// Op is the failed operation ("deploy" or "destroy").
	Op string
	// Stack is the stack name.
	Stack string
	// State is the terminal state the stack reached, if it reached one.
	State State
	// Reason is the provider's status reason, verbatim.
	Reason string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *DeployError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s stack %q failed", e.Op, e.Stack)
	if e.State != "" {
		fmt.Fprintf(&b, ": stack entered %s", e.State)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if hint := classifyHint(e.Cause); hint != "" {
		fmt.Fprintf(&b, " [hint: %s]", hint)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *DeployError) Unwrap() error { return e.Cause }

// Remediation hint constants.
const (
	hintCheckIAM     = "verify the credential profile has CloudFormation, SageMaker and IAM permissions"
	hintCheckNetwork = "verify the AWS region is correct and network connectivity is available"
	hintWaitRetry    = "the stack may still be transitioning; check status and retry"
	hintCheckConfig  = "check the template and parameter values match CloudFormation requirements"
)

// Keyword groups for failure classification.
var (
	permissionKeywords = []string{
		"accessdenied", "access denied", "unauthorized",
		"not authorized", "forbidden",
	}
	networkKeywords = []string{
		"connection refused", "no such host", "dial tcp", "tls handshake",
	}
	timeoutKeywords = []string{
		"did not reach", "deadline exceeded", "context canceled",
	}
	configKeywords = []string{
		"validation", "invalid", "malformed", "does not match",
	}
)

// classifyHint inspects an underlying error and returns a remediation hint
// for common failure patterns, or "" when nothing useful can be said.
func classifyHint(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, permissionKeywords):
		return hintCheckIAM
	case containsAny(msg, networkKeywords):
		return hintCheckNetwork
	case containsAny(msg, timeoutKeywords):
		return hintWaitRetry
	case containsAny(msg, configKeywords):
		return hintCheckConfig
	}
	return ""
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
