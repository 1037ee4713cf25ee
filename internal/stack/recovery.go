package stack

import (
	"context"
	"log"
)

// deleteWait finishes when the stack is fully gone. Stale pre-delete
// terminal states keep polling: deletion is asynchronous and the first
// probe after DeleteStack may still observe the old status.
var deleteWait = waitSpec{
	success: map[State]bool{
		StateDeleteComplete: true,
		StateAbsent:         true,
	},
	failure: map[State]bool{
		StateFailed: true,
	},
}

// EnsureDeployable verifies the stack can accept a create-or-update, taking
// recovery action when it cannot.
//
// ROLLBACK_COMPLETE is the one unrecoverable state CloudFormation can leave a
// stack in: it blocks any further create or update against the same name and
// can only be deleted. This is the single state-machine transition in the
// system: ROLLBACK_COMPLETE --(delete, wait)--> DELETE_COMPLETE --> deployable.
//
// An UNKNOWN probe result fails immediately rather than guessing: deploying
// against an indeterminate state could compound a transient failure. Any
// other state returns with no action.
func (m *Manager) EnsureDeployable(ctx context.Context) error {
	state, _, err := m.Probe(ctx)
	if err != nil {
		return &RecoveryError{
			Stack:  m.desc.Name,
			Reason: "state is unknown, refusing to deploy",
			Cause:  err,
		}
	}
	if state != StateRollbackComplete {
		return nil
	}

	log.Printf("quarry-deploy: stack %q is ROLLBACK_COMPLETE, deleting before deploy", m.desc.Name)
	if err := m.api.Delete(ctx, m.desc.Name); err != nil {
		return &RecoveryError{
			Stack:  m.desc.Name,
			Reason: "delete of rolled-back stack was rejected",
			Cause:  err,
		}
	}

	final, details, err := m.waitFor(ctx, m.timeouts.Recovery, deleteWait)
	if err != nil {
		return &RecoveryError{
			Stack:  m.desc.Name,
			Reason: "delete of rolled-back stack did not complete",
			Cause:  err,
		}
	}
	if !deleteWait.success[final] {
		reason := "delete of rolled-back stack failed"
		if details != nil && details.StatusReason != "" {
			reason += ": " + details.StatusReason
		}
		return &RecoveryError{Stack: m.desc.Name, Reason: reason}
	}

	log.Printf("quarry-deploy: stack %q cleared, proceeding", m.desc.Name)
	return nil
}
