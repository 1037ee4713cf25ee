package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/quarry-ml/quarry-deploy/internal/stack"
)

func TestRenderStatus_AbsentStack(t *testing.T) {
	var out bytes.Buffer
	renderStatus(&out, &stack.StatusView{Name: "quarry-inference", Exists: false, State: stack.StateAbsent})

	assert.Equal(t, "quarry-inference: no stack\n", out.String())
}

func TestRenderStatus_FullView(t *testing.T) {
	// Disable ANSI codes so assertions see plain text.
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(2 * time.Hour)
	var out bytes.Buffer
	renderStatus(&out, &stack.StatusView{
		Name:      "quarry-inference",
		Exists:    true,
		State:     stack.StateUpdateComplete,
		CreatedAt: created,
		UpdatedAt: &updated,
		Outputs: map[string]string{
			"ModelName":    "quarry-embed-model",
			"EndpointName": "quarry-embed-serverless",
		},
	})

	got := out.String()
	assert.Contains(t, got, "quarry-inference: UPDATE_COMPLETE")
	assert.Contains(t, got, "created: 2026-03-01 12:00:00 UTC")
	assert.Contains(t, got, "updated: 2026-03-01 14:00:00 UTC")
	// Outputs render sorted by key.
	endpoint := bytes.Index(out.Bytes(), []byte("EndpointName"))
	model := bytes.Index(out.Bytes(), []byte("ModelName"))
	assert.True(t, endpoint >= 0 && model > endpoint, "outputs not sorted: %s", got)
}

func TestRenderStatus_IncludesReason(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var out bytes.Buffer
	renderStatus(&out, &stack.StatusView{
		Name:         "quarry-inference",
		Exists:       true,
		State:        stack.StateRollbackComplete,
		StatusReason: "The following resource(s) failed to create: [Endpoint]",
	})

	assert.Contains(t, out.String(), "reason:  The following resource(s) failed to create: [Endpoint]")
}
