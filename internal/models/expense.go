package models

import "time"

// Expense represents a payment made by one user on behalf of others.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is the human-readable label (e.g., "Churrasco", "Uber").
	Description string

	// Amount is the full amount paid, in currency units.
	Amount float64

	// PaidByID is the user who fronted the money.
	PaidByID string

	// ParticipantIDs are the users the expense is split between. The payer
	// may or may not be included; paying for yourself is balance-neutral.
	// IDs of since-removed users are kept as-is (see internal/calculator).
	ParticipantIDs []string

	// Date is the calendar date of the expense, normalized to noon UTC so a
	// date picked in any timezone renders as the same day everywhere.
	// The zero value means "no date".
	Date time.Time

	// IsSettlement marks a deliberate debt payment rather than a shared cost.
	// The netting math treats it like any other expense; the flag only
	// changes presentation.
	IsSettlement bool

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}
