package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
)

type fakeRuntime struct {
	body []byte
	err  error
	last *sagemakerruntime.InvokeEndpointInput
}

func (f *fakeRuntime) InvokeEndpoint(_ context.Context, params *sagemakerruntime.InvokeEndpointInput, _ ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error) {
	f.last = params
	if f.err != nil {
		return nil, f.err
	}
	return &sagemakerruntime.InvokeEndpointOutput{Body: f.body}, nil
}

func TestInvoke_ParsesEmbeddingMatrix(t *testing.T) {
	api := &fakeRuntime{body: []byte(`[[0.1, 0.2, 0.3], [0.4, 0.5, 0.6]]`)}

	result, err := Invoke(context.Background(), api, "quarry-embed", []string{"first", "second"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result.Rows != 2 || result.Dimension != 3 {
		t.Fatalf("result = %+v, want 2 rows of dimension 3", result)
	}

	if aws.ToString(api.last.EndpointName) != "quarry-embed" {
		t.Fatalf("endpoint = %q", aws.ToString(api.last.EndpointName))
	}
	if aws.ToString(api.last.ContentType) != "application/json" {
		t.Fatalf("content type = %q", aws.ToString(api.last.ContentType))
	}

	var payload map[string][]string
	if err := json.Unmarshal(api.last.Body, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if len(payload["inputs"]) != 2 || payload["inputs"][0] != "first" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestInvoke_RowCountMismatch(t *testing.T) {
	api := &fakeRuntime{body: []byte(`[[0.1, 0.2]]`)}

	_, err := Invoke(context.Background(), api, "quarry-embed", []string{"a", "b"})
	if err == nil || !strings.Contains(err.Error(), "got 1 vectors for 2 inputs") {
		t.Fatalf("err = %v", err)
	}
}

func TestInvoke_InconsistentDimension(t *testing.T) {
	api := &fakeRuntime{body: []byte(`[[0.1, 0.2], [0.3]]`)}

	_, err := Invoke(context.Background(), api, "quarry-embed", []string{"a", "b"})
	if err == nil || !strings.Contains(err.Error(), "dimension") {
		t.Fatalf("err = %v", err)
	}
}

func TestInvoke_NonMatrixBody(t *testing.T) {
	api := &fakeRuntime{body: []byte(`{"error": "model not loaded"}`)}

	_, err := Invoke(context.Background(), api, "quarry-embed", []string{"a"})
	if err == nil || !strings.Contains(err.Error(), "unexpected response body") {
		t.Fatalf("err = %v", err)
	}
}

func TestInvoke_NoInputs(t *testing.T) {
	api := &fakeRuntime{}
	if _, err := Invoke(context.Background(), api, "quarry-embed", nil); err == nil {
		t.Fatal("expected error for empty input")
	}
	if api.last != nil {
		t.Fatal("endpoint invoked with empty input")
	}
}

func TestInvoke_APIFailurePropagates(t *testing.T) {
	cause := errors.New("ModelError: received server error (500)")
	api := &fakeRuntime{err: cause}

	_, err := Invoke(context.Background(), api, "quarry-embed", []string{"a"})
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped %v", err, cause)
	}
}
