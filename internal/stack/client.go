package stack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
)

// OpKind is the kind of mutation the provider chose for a create-or-update
// request.
type OpKind int

// Create-or-update results.
const (
	// OpCreated means a new stack creation was started.
	OpCreated OpKind = iota
	// OpUpdated means an update of the existing stack was started.
	OpUpdated
	// OpNoChange means the request was semantically equal to the deployed
	// state and the provider had nothing to apply.
	OpNoChange
)

// stackAPI abstracts the orchestration provider calls the lifecycle manager
// relies on, so tests can swap in fakes.
type stackAPI interface {
	// Describe returns the current stack snapshot. A not-found condition is
	// reported as an error recognized by isStackNotFound.
	Describe(ctx context.Context, name string) (*Details, error)
	// CreateOrUpdate issues a single idempotent create-or-update request.
	// The provider decides create vs. update from current existence; callers
	// never branch on it.
	CreateOrUpdate(ctx context.Context, desc Descriptor, req Request) (OpKind, error)
	// Delete requests stack deletion.
	Delete(ctx context.Context, name string) error
}

// Template parameter names carrying the published artifact location into the
// stack. The template consumes these to point the SageMaker model at the
// model package object.
const (
	artifactBucketParam = "ModelDataBucket"
	artifactKeyParam    = "ModelDataKey"
)

// cfnAPI is the subset of the CloudFormation API used by the client.
type cfnAPI interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	UpdateStack(ctx context.Context, params *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
}

// Compile-time check that the real SDK client satisfies cfnAPI.
var _ cfnAPI = (*cloudformation.Client)(nil)

// Client implements stackAPI against CloudFormation.
type Client struct {
	cfn cfnAPI
}

// NewClient wraps a CloudFormation SDK client.
func NewClient(cfn *cloudformation.Client) *Client {
	return &Client{cfn: cfn}
}

// Describe queries the stack and maps the result into a Details snapshot.
func (c *Client) Describe(ctx context.Context, name string) (*Details, error) {
	out, err := c.cfn.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(name),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Stacks) == 0 {
		return nil, &smithy.GenericAPIError{
			Code:    "ValidationError",
			Message: fmt.Sprintf("Stack with id %s does not exist", name),
		}
	}
	s := out.Stacks[0]

	outputs := make(map[string]string, len(s.Outputs))
	for _, o := range s.Outputs {
		outputs[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
	}

	return &Details{
		Name:         name,
		State:        fromStackStatus(s.StackStatus),
		StatusReason: aws.ToString(s.StackStatusReason),
		CreatedAt:    aws.ToTime(s.CreationTime),
		UpdatedAt:    s.LastUpdatedTime,
		Outputs:      outputs,
	}, nil
}

// CreateOrUpdate issues CreateStack and converts AlreadyExistsException into
// UpdateStack, so the caller never branches on stack existence and there is
// no probe-then-act race. An update with nothing to apply is reported as
// OpNoChange, a success.
func (c *Client) CreateOrUpdate(ctx context.Context, desc Descriptor, req Request) (OpKind, error) {
	params := buildParameters(req)
	capabilities := buildCapabilities(desc.Capabilities)

	_, err := c.cfn.CreateStack(ctx, &cloudformation.CreateStackInput{
		StackName:    aws.String(desc.Name),
		TemplateBody: aws.String(desc.TemplateBody),
		Parameters:   params,
		Capabilities: capabilities,
		// Keep failed creations around in ROLLBACK_COMPLETE so the operator
		// can inspect events; recovery clears them on the next deploy.
		OnFailure: types.OnFailureRollback,
	})
	if err == nil {
		return OpCreated, nil
	}
	if !isAlreadyExists(err) {
		return OpNoChange, fmt.Errorf("CreateStack %q: %w", desc.Name, err)
	}

	_, err = c.cfn.UpdateStack(ctx, &cloudformation.UpdateStackInput{
		StackName:    aws.String(desc.Name),
		TemplateBody: aws.String(desc.TemplateBody),
		Parameters:   params,
		Capabilities: capabilities,
	})
	if err != nil {
		if isNoUpdates(err) {
			return OpNoChange, nil
		}
		return OpNoChange, fmt.Errorf("UpdateStack %q: %w", desc.Name, err)
	}
	return OpUpdated, nil
}

// Delete requests stack deletion. Provider rejections propagate verbatim.
func (c *Client) Delete(ctx context.Context, name string) error {
	_, err := c.cfn.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("DeleteStack %q: %w", name, err)
	}
	return nil
}

// buildParameters converts the merged parameter map plus the artifact
// location into SDK parameters, in deterministic order.
func buildParameters(req Request) []types.Parameter {
	merged := make(map[string]string, len(req.Parameters)+2)
	for k, v := range req.Parameters {
		merged[k] = v
	}
	if req.ArtifactBucket != "" {
		merged[artifactBucketParam] = req.ArtifactBucket
		merged[artifactKeyParam] = req.ArtifactKey
	}

	params := make([]types.Parameter, 0, len(merged))
	for _, k := range sortedParameterKeys(merged) {
		params = append(params, types.Parameter{
			ParameterKey:   aws.String(k),
			ParameterValue: aws.String(merged[k]),
		})
	}
	return params
}

// buildCapabilities converts capability names to SDK values.
func buildCapabilities(names []string) []types.Capability {
	caps := make([]types.Capability, 0, len(names))
	for _, n := range names {
		caps = append(caps, types.Capability(n))
	}
	return caps
}

// isStackNotFound returns true if the error is CloudFormation's way of
// reporting a nonexistent stack: a ValidationError whose message says the
// stack does not exist. Genuine query failures do not match and must not be
// collapsed into absence.
func isStackNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "does not exist")
}

// isAlreadyExists returns true for CloudFormation's AlreadyExistsException.
func isAlreadyExists(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "AlreadyExistsException"
}

// isNoUpdates returns true when UpdateStack reports that the request matches
// the deployed state ("No updates are to be performed").
func isNoUpdates(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "No updates are to be performed")
}
