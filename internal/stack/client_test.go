package stack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
)

// fakeCFN is a scripted cfnAPI that records inputs so tests can assert on the
// exact requests the client builds.
type fakeCFN struct {
	describeOut *cloudformation.DescribeStacksOutput
	describeErr error
	createErr   error
	updateErr   error
	deleteErr   error

	lastCreate *cloudformation.CreateStackInput
	lastUpdate *cloudformation.UpdateStackInput
	lastDelete *cloudformation.DeleteStackInput
}

func (f *fakeCFN) DescribeStacks(_ context.Context, _ *cloudformation.DescribeStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	return f.describeOut, f.describeErr
}

func (f *fakeCFN) CreateStack(_ context.Context, params *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
	f.lastCreate = params
	return &cloudformation.CreateStackOutput{}, f.createErr
}

func (f *fakeCFN) UpdateStack(_ context.Context, params *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
	f.lastUpdate = params
	return &cloudformation.UpdateStackOutput{}, f.updateErr
}

func (f *fakeCFN) DeleteStack(_ context.Context, params *cloudformation.DeleteStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error) {
	f.lastDelete = params
	return &cloudformation.DeleteStackOutput{}, f.deleteErr
}

func alreadyExistsErr() error {
	return &smithy.GenericAPIError{
		Code:    "AlreadyExistsException",
		Message: "Stack [quarry-inference] already exists",
	}
}

func noUpdatesErr() error {
	return &smithy.GenericAPIError{
		Code:    "ValidationError",
		Message: "No updates are to be performed.",
	}
}

func TestClientCreateOrUpdate_FreshStackCreates(t *testing.T) {
	cfn := &fakeCFN{}
	c := &Client{cfn: cfn}

	kind, err := c.CreateOrUpdate(context.Background(), testDescriptor(), Request{
		Parameters:     map[string]string{"EndpointName": "quarry-embed"},
		ArtifactBucket: "quarry-artifacts",
		ArtifactKey:    "sagemaker-inference/model.tar.gz",
	})
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if kind != OpCreated {
		t.Fatalf("kind = %v, want OpCreated", kind)
	}
	if cfn.lastUpdate != nil {
		t.Fatal("UpdateStack called on a fresh stack")
	}

	got := map[string]string{}
	for _, p := range cfn.lastCreate.Parameters {
		got[aws.ToString(p.ParameterKey)] = aws.ToString(p.ParameterValue)
	}
	want := map[string]string{
		"EndpointName":    "quarry-embed",
		"ModelDataBucket": "quarry-artifacts",
		"ModelDataKey":    "sagemaker-inference/model.tar.gz",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("parameter %s = %q, want %q (all: %v)", k, got[k], v, got)
		}
	}
	if cfn.lastCreate.OnFailure != types.OnFailureRollback {
		t.Fatalf("OnFailure = %v, want ROLLBACK", cfn.lastCreate.OnFailure)
	}
}

func TestClientCreateOrUpdate_ExistingStackUpdates(t *testing.T) {
	cfn := &fakeCFN{createErr: alreadyExistsErr()}
	c := &Client{cfn: cfn}

	kind, err := c.CreateOrUpdate(context.Background(), testDescriptor(), Request{})
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if kind != OpUpdated {
		t.Fatalf("kind = %v, want OpUpdated", kind)
	}
	if cfn.lastUpdate == nil {
		t.Fatal("UpdateStack not called")
	}
}

func TestClientCreateOrUpdate_NoChangesIsNoOp(t *testing.T) {
	cfn := &fakeCFN{createErr: alreadyExistsErr(), updateErr: noUpdatesErr()}
	c := &Client{cfn: cfn}

	kind, err := c.CreateOrUpdate(context.Background(), testDescriptor(), Request{})
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if kind != OpNoChange {
		t.Fatalf("kind = %v, want OpNoChange", kind)
	}
}

func TestClientCreateOrUpdate_CreateRejectionPropagates(t *testing.T) {
	cause := &smithy.GenericAPIError{Code: "ValidationError", Message: "Template format error"}
	cfn := &fakeCFN{createErr: cause}
	c := &Client{cfn: cfn}

	_, err := c.CreateOrUpdate(context.Background(), testDescriptor(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("cause not preserved: %v", err)
	}
	if cfn.lastUpdate != nil {
		t.Fatal("UpdateStack called after non-conflict create failure")
	}
}

func TestClientCreateOrUpdate_UpdateRejectionPropagates(t *testing.T) {
	cfn := &fakeCFN{
		createErr: alreadyExistsErr(),
		updateErr: &smithy.GenericAPIError{Code: "InsufficientCapabilitiesException", Message: "Requires capabilities : [CAPABILITY_NAMED_IAM]"},
	}
	c := &Client{cfn: cfn}

	_, err := c.CreateOrUpdate(context.Background(), testDescriptor(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestClientDescribe_MapsStackFields(t *testing.T) {
	created := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	cfn := &fakeCFN{describeOut: &cloudformation.DescribeStacksOutput{
		Stacks: []types.Stack{{
			StackName:         aws.String("quarry-inference"),
			StackStatus:       types.StackStatusUpdateComplete,
			StackStatusReason: aws.String(""),
			CreationTime:      &created,
			LastUpdatedTime:   &updated,
			Outputs: []types.Output{{
				OutputKey:   aws.String("EndpointName"),
				OutputValue: aws.String("quarry-embed-serverless"),
			}},
		}},
	}}
	c := &Client{cfn: cfn}

	details, err := c.Describe(context.Background(), "quarry-inference")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if details.State != StateUpdateComplete {
		t.Fatalf("state = %s, want %s", details.State, StateUpdateComplete)
	}
	if !details.CreatedAt.Equal(created) || details.UpdatedAt == nil || !details.UpdatedAt.Equal(updated) {
		t.Fatalf("timestamps = %v / %v", details.CreatedAt, details.UpdatedAt)
	}
	if details.Outputs["EndpointName"] != "quarry-embed-serverless" {
		t.Fatalf("outputs = %v", details.Outputs)
	}
}

func TestClientDescribe_EmptyResultIsNotFound(t *testing.T) {
	cfn := &fakeCFN{describeOut: &cloudformation.DescribeStacksOutput{}}
	c := &Client{cfn: cfn}

	_, err := c.Describe(context.Background(), "quarry-inference")
	if !isStackNotFound(err) {
		t.Fatalf("err = %v, want stack-not-found", err)
	}
}

func TestClientDelete_RejectionWrapsCause(t *testing.T) {
	cfn := &fakeCFN{deleteErr: errors.New("access denied")}
	c := &Client{cfn: cfn}

	err := c.Delete(context.Background(), "quarry-inference")
	if err == nil {
		t.Fatal("expected error")
	}
	if cfn.lastDelete == nil || aws.ToString(cfn.lastDelete.StackName) != "quarry-inference" {
		t.Fatalf("DeleteStack input = %+v", cfn.lastDelete)
	}
}

func TestIsStackNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"not found", notFoundErr("quarry-inference"), true},
		{"other validation error", &smithy.GenericAPIError{Code: "ValidationError", Message: "Template format error"}, false},
		{"throttled", &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"}, false},
		{"plain error", errors.New("dial tcp: connection refused"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isStackNotFound(tt.err); got != tt.want {
				t.Fatalf("isStackNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
