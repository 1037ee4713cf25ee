package stack

import (
	"context"
	"log"
)

// deployWait finishes when the create/update succeeds or CloudFormation has
// decided failure. Absent and DELETE_* are failures here: they mean the
// stack vanished under a concurrent actor while we were waiting.
var deployWait = waitSpec{
	success: map[State]bool{
		StateCreateComplete: true,
		StateUpdateComplete: true,
	},
	failure: map[State]bool{
		StateRollbackComplete: true,
		StateFailed:           true,
		StateDeleteComplete:   true,
		StateAbsent:           true,
	},
}

// Deploy issues a single idempotent create-or-update and blocks until the
// operation reaches a terminal state.
//
// Preconditions: the artifact is already published at the referenced location
// and EnsureDeployable has run for this descriptor.
//
// A provider report of "no changes to apply" is a success NoOp. Any terminal
// failure surfaces verbatim as a *DeployError and is not retried: retrying a
// failed infrastructure mutation without operator inspection risks masking
// real defects.
func (m *Manager) Deploy(ctx context.Context, req Request) (Outcome, error) {
	kind, err := m.api.CreateOrUpdate(ctx, m.desc, req)
	if err != nil {
		return OutcomeFailed, &DeployError{Op: "deploy", Stack: m.desc.Name, Cause: err}
	}
	if kind == OpNoChange {
		log.Printf("quarry-deploy: stack %q has no changes to apply", m.desc.Name)
		return OutcomeNoOp, nil
	}

	verb := "creating"
	if kind == OpUpdated {
		verb = "updating"
	}
	log.Printf("quarry-deploy: %s stack %q", verb, m.desc.Name)

	final, details, err := m.waitFor(ctx, m.timeouts.Deploy, deployWait)
	if err != nil {
		return OutcomeFailed, &DeployError{Op: "deploy", Stack: m.desc.Name, Cause: err}
	}

	switch final {
	case StateCreateComplete:
		return OutcomeCreated, nil
	case StateUpdateComplete:
		return OutcomeUpdated, nil
	}

	failure := &DeployError{Op: "deploy", Stack: m.desc.Name, State: final}
	if details != nil {
		failure.Reason = details.StatusReason
	}
	return OutcomeFailed, failure
}

// Destroy issues an unconditional delete and blocks until the stack is gone.
// It does not probe first; deleting a stack the provider rejects (including
// one that does not exist) surfaces as a *DeployError.
func (m *Manager) Destroy(ctx context.Context) (Outcome, error) {
	log.Printf("quarry-deploy: deleting stack %q", m.desc.Name)
	if err := m.api.Delete(ctx, m.desc.Name); err != nil {
		return OutcomeFailed, &DeployError{Op: "destroy", Stack: m.desc.Name, Cause: err}
	}

	final, details, err := m.waitFor(ctx, m.timeouts.Destroy, deleteWait)
	if err != nil {
		return OutcomeFailed, &DeployError{Op: "destroy", Stack: m.desc.Name, Cause: err}
	}
	if !deleteWait.success[final] {
		failure := &DeployError{Op: "destroy", Stack: m.desc.Name, State: final}
		if details != nil {
			failure.Reason = details.StatusReason
		}
		return OutcomeFailed, failure
	}

	log.Printf("quarry-deploy: stack %q deleted", m.desc.Name)
	return OutcomeDeleted, nil
}
