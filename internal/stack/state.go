package stack

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// State is the normalized lifecycle state of the managed stack. Absent and
// Unknown are synthesized locally when the provider cannot answer; all other
// values are reported by CloudFormation.
type State string

// Normalized stack states.
const (
	StateAbsent           State = "ABSENT"
	StateCreateInProgress State = "CREATE_IN_PROGRESS"
	StateCreateComplete   State = "CREATE_COMPLETE"
	StateUpdateInProgress State = "UPDATE_IN_PROGRESS"
	StateUpdateComplete   State = "UPDATE_COMPLETE"
	StateRollbackComplete State = "ROLLBACK_COMPLETE"
	StateDeleteInProgress State = "DELETE_IN_PROGRESS"
	StateDeleteComplete   State = "DELETE_COMPLETE"
	StateFailed           State = "FAILED"
	StateUnknown          State = "UNKNOWN"
)

// fromStackStatus maps a CloudFormation StackStatus to a normalized State.
//
// UPDATE_ROLLBACK_COMPLETE maps to StateFailed rather than
// StateRollbackComplete: a stack in that state is still updatable, and
// classifying it as ROLLBACK_COMPLETE would make recovery delete a live
// stack. Rollback-in-progress and *_FAILED statuses also map to StateFailed
// so a deploy wait ends as soon as CloudFormation has decided the outcome.
func fromStackStatus(s types.StackStatus) State {
	switch s {
	case types.StackStatusCreateInProgress:
		return StateCreateInProgress
	case types.StackStatusCreateComplete:
		return StateCreateComplete
	case types.StackStatusUpdateInProgress, types.StackStatusUpdateCompleteCleanupInProgress:
		return StateUpdateInProgress
	case types.StackStatusUpdateComplete:
		return StateUpdateComplete
	case types.StackStatusRollbackComplete:
		return StateRollbackComplete
	case types.StackStatusDeleteInProgress:
		return StateDeleteInProgress
	case types.StackStatusDeleteComplete:
		return StateDeleteComplete
	default:
		return StateFailed
	}
}

// InProgress reports whether the state is transitional, i.e. an operation is
// still being driven by the provider.
func (s State) InProgress() bool {
	switch s {
	case StateCreateInProgress, StateUpdateInProgress, StateDeleteInProgress:
		return true
	}
	return false
}

// Terminal reports whether no operation is currently in progress.
func (s State) Terminal() bool {
	return s != StateUnknown && !s.InProgress()
}

// Details is a read-only snapshot of the remote stack, as reported by the
// provider at probe time.
type Details struct {
	Name         string
	State        State
	StatusReason string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	Outputs      map[string]string
}
