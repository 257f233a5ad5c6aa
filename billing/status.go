package billing

import "time"

// Status is an invoice lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// allowedTransitions is the full transition table. paid -> pending is the
// "undo paid" edge; cancelled is terminal.
var allowedTransitions = map[Status][]Status{
	StatusDraft:     {StatusSent, StatusPending, StatusCancelled},
	StatusSent:      {StatusPending, StatusPaid, StatusCancelled},
	StatusPending:   {StatusPaid, StatusOverdue, StatusCancelled},
	StatusOverdue:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusPending},
	StatusCancelled: {},
}

// ValidStatus reports whether s is a real lifecycle state. The filter
// sentinel "all" is deliberately not part of this set.
func ValidStatus(s Status) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionEffect describes the timestamp side effects of a status change.
type TransitionEffect struct {
	Status Status
	// PaidAt is the new paid timestamp; nil clears it.
	PaidAt *time.Time
	// SetPaidAt is true when PaidAt should be written at all.
	SetPaidAt bool
}

// ApplyTransition validates from -> to and returns the effect to persist.
// Moving into paid stamps paidAt with now; undoing paid clears it.
func ApplyTransition(from, to Status, now time.Time) (TransitionEffect, error) {
	if !ValidStatus(to) {
		return TransitionEffect{}, newValidationError("status", "unknown status %q", string(to))
	}
	if !CanTransition(from, to) {
		return TransitionEffect{}, &TransitionError{From: from, To: to}
	}

	effect := TransitionEffect{Status: to}
	switch {
	case to == StatusPaid:
		effect.PaidAt = &now
		effect.SetPaidAt = true
	case from == StatusPaid && to == StatusPending:
		effect.PaidAt = nil
		effect.SetPaidAt = true
	}
	return effect, nil
}
