package quotations

import (
	"context"
	"fmt"

	"github.com/qmuntal/stateless"

	"github.com/odyssey-erp/bodyshop/internal/shared"
)

type Trigger string

const (
	TriggerSend    Trigger = "send"
	TriggerApprove Trigger = "approve"
	TriggerReject  Trigger = "reject"
)

// newMachine configures draft -> sent -> approved|rejected. Approved and rejected are terminal
// and nothing returns to draft.
func newMachine(status Status) *stateless.StateMachine {
	machine := stateless.NewStateMachine(status)

	machine.Configure(StatusDraft).
		Permit(TriggerSend, StatusSent)

	machine.Configure(StatusSent).
		Permit(TriggerApprove, StatusApproved).
		Permit(TriggerReject, StatusRejected)

	machine.Configure(StatusApproved)
	machine.Configure(StatusRejected)

	return machine
}

// Transition fires trigger from status and returns the resulting status.
func Transition(ctx context.Context, status Status, trigger Trigger) (Status, error) {
	machine := newMachine(status)
	if err := machine.FireCtx(ctx, trigger); err != nil {
		return status, fmt.Errorf("cannot %s a %s quotation: %w", trigger, status, shared.ErrInvalidStatus)
	}
	next, ok := machine.MustState().(Status)
	if !ok {
		return status, fmt.Errorf("cannot %s a %s quotation: %w", trigger, status, shared.ErrInvalidStatus)
	}
	return next, nil
}

// AllowedTriggers lists the triggers that can fire from status.
func AllowedTriggers(ctx context.Context, status Status) []Trigger {
	var allowed []Trigger
	for _, trigger := range []Trigger{TriggerSend, TriggerApprove, TriggerReject} {
		if _, err := Transition(ctx, status, trigger); err == nil {
			allowed = append(allowed, trigger)
		}
	}
	return allowed
}
