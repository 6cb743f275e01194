package quotations

import (
	"fmt"
	"slices"

	"github.com/voyageos/voyageos/internal/platform/httpx"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSent      Status = "SENT"
	StatusConfirmed Status = "CONFIRMED"
	StatusBooked    Status = "BOOKED"
	StatusCancelled Status = "CANCELLED"
)

// transitions lists the statuses reachable from each status. BOOKED and
// CANCELLED are terminal.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSent, StatusCancelled},
	StatusSent:      {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusBooked, StatusCancelled},
	StatusBooked:    nil,
	StatusCancelled: nil,
}

// ParseStatus rejects values outside the enumeration.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := transitions[s]; !ok {
		return "", fmt.Errorf("invalid quotation status %q: %w", raw, httpx.ErrValidation)
	}
	return s, nil
}

// CanTransition reports whether from -> to is an allowed move.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// Next lists the statuses reachable from s.
func Next(s Status) []Status {
	return slices.Clone(transitions[s])
}

func checkTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("cannot move quotation from %s to %s: %w", from, to, httpx.ErrInvalidState)
	}
	return nil
}

// editable statuses accept new items; from CONFIRMED on the invoice is fixed.
func editable(s Status) bool {
	return s == StatusDraft || s == StatusSent
}
