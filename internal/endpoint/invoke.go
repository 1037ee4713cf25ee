// Package endpoint talks to the deployed SageMaker inference endpoint:
// smoke-testing it with a real embedding request and surfacing its recent
// CloudWatch logs.
package endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
)

// invokeContentType is the payload content type the inference handler accepts.
const invokeContentType = "application/json"

// runtimeAPI is the subset of the SageMaker runtime API used for invocation.
type runtimeAPI interface {
	InvokeEndpoint(ctx context.Context, params *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// Compile-time check that the real SDK client satisfies runtimeAPI.
var _ runtimeAPI = (*sagemakerruntime.Client)(nil)

// InvokeResult summarizes an embedding response.
type InvokeResult struct {
	// Rows is the number of embedding vectors returned.
	Rows int
	// Dimension is the vector width.
	Dimension int
	// Latency is the round-trip time of the invocation.
	Latency time.Duration
}

// Invoke posts the texts to the endpoint as {"inputs": [...]} and parses the
// 2-D float matrix the inference handler returns. One row per input text is
// required; a shape mismatch means the endpoint is serving the wrong handler.
func Invoke(ctx context.Context, api runtimeAPI, endpointName string, texts []string) (*InvokeResult, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("invoke endpoint %q: no input texts", endpointName)
	}

	payload, err := json.Marshal(map[string][]string{"inputs": texts})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	start := time.Now()
	out, err := api.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(endpointName),
		ContentType:  aws.String(invokeContentType),
		Body:         payload,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke endpoint %q: %w", endpointName, err)
	}
	latency := time.Since(start)

	var vectors [][]float32
	if err := json.Unmarshal(out.Body, &vectors); err != nil {
		return nil, fmt.Errorf("invoke endpoint %q: unexpected response body: %w", endpointName, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf(
			"invoke endpoint %q: got %d vectors for %d inputs",
			endpointName, len(vectors), len(texts),
		)
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf(
				"invoke endpoint %q: vector %d has dimension %d, expected %d",
				endpointName, i, len(v), dim,
			)
		}
	}

	return &InvokeResult{Rows: len(vectors), Dimension: dim, Latency: latency}, nil
}
