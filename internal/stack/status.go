package stack

import (
	"context"
	"time"
)

// StatusView is the read-only status report for the managed stack. Absence
// is a legitimate, common outcome (nothing deployed yet), not an error.
type StatusView struct {
	Name         string
	Exists       bool
	State        State
	StatusReason string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	Outputs      map[string]string
}

// Status probes the stack and renders the result. A nonexistent stack yields
// a "no stack" view with a nil error; only a genuine probe failure is an
// error. Read-only: no mutation of remote state.
func (m *Manager) Status(ctx context.Context) (*StatusView, error) {
	state, details, err := m.Probe(ctx)
	if err != nil {
		return nil, err
	}
	if state == StateAbsent {
		return &StatusView{Name: m.desc.Name, Exists: false, State: StateAbsent}, nil
	}
	return &StatusView{
		Name:         m.desc.Name,
		Exists:       true,
		State:        state,
		StatusReason: details.StatusReason,
		CreatedAt:    details.CreatedAt,
		UpdatedAt:    details.UpdatedAt,
		Outputs:      details.Outputs,
	}, nil
}
