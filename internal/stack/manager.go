package stack

import (
	"context"
	"fmt"
	"log"
	"time"
)

// defaultPollInterval is the delay between state probes while waiting for an
// operation to reach a terminal state.
const defaultPollInterval = 5 * time.Second

// Timeouts bounds each blocking wait. Every operation has an explicit
// timeout so a stalled provider cannot block an invocation forever.
type Timeouts struct {
	// Deploy bounds the wait for a create/update to reach a terminal state.
	Deploy time.Duration
	// Destroy bounds the wait for a delete to reach a terminal state.
	Destroy time.Duration
	// Recovery bounds the delete-to-clear wait for a ROLLBACK_COMPLETE stack.
	Recovery time.Duration
}

// Manager drives the lifecycle of a single named stack. It owns no persistent
// local state; the remote provider is the sole source of truth, and every
// invocation re-evaluates current remote state from scratch.
type Manager struct {
	api          stackAPI
	desc         Descriptor
	pollInterval time.Duration
	timeouts     Timeouts
}

// NewManager builds a Manager for the given descriptor. A zero pollInterval
// falls back to the default.
func NewManager(api stackAPI, desc Descriptor, pollInterval time.Duration, timeouts Timeouts) *Manager {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Manager{
		api:          api,
		desc:         desc,
		pollInterval: pollInterval,
		timeouts:     timeouts,
	}
}

// Probe queries the provider for the current stack state. A nonexistent
// stack is (StateAbsent, nil, nil). A failed query is (StateUnknown, nil,
// *ProbeError) so downstream consumers can distinguish "no stack" from
// "could not tell" and fail closed. No side effects.
func (m *Manager) Probe(ctx context.Context) (State, *Details, error) {
	details, err := m.api.Describe(ctx, m.desc.Name)
	if err != nil {
		if isStackNotFound(err) {
			return StateAbsent, nil, nil
		}
		log.Printf("quarry-deploy: probing stack %q failed: %v", m.desc.Name, err)
		return StateUnknown, nil, &ProbeError{Stack: m.desc.Name, Cause: err}
	}
	return details.State, details, nil
}

// waitSpec describes when a poll-to-terminal wait is finished: success states
// end it successfully, failure states end it as a provider-decided failure,
// and anything else keeps polling until the deadline.
type waitSpec struct {
	success map[State]bool
	failure map[State]bool
}

// waitFor polls the stack until it reaches one of the spec's states or the
// timeout elapses. It returns the last observed state and details; a nil
// error means a state in the spec was reached (the caller maps success vs.
// failure). Probe failures during the wait abort it: an indeterminate state
// is never waited through.
func (m *Manager) waitFor(ctx context.Context, timeout time.Duration, spec waitSpec) (State, *Details, error) {
	deadline := time.Now().Add(timeout)
	state, details := StateUnknown, (*Details)(nil)

	for {
		var err error
		state, details, err = m.Probe(ctx)
		if err != nil {
			return state, details, err
		}
		if spec.success[state] || spec.failure[state] {
			return state, details, nil
		}

		if time.Now().After(deadline) {
			return state, details, fmt.Errorf(
				"stack %q did not reach a terminal state within %s (last state %s)",
				m.desc.Name, timeout, state,
			)
		}
		log.Printf("quarry-deploy: stack %q is %s, waiting", m.desc.Name, state)

		select {
		case <-ctx.Done():
			return state, details, ctx.Err()
		case <-time.After(m.pollInterval):
		}
	}
}
