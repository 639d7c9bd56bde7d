// Package calculator is the debt-netting engine: given a snapshot of group
// participants and expenses it derives per-user balances, a minimal set of
// pairwise debts, and the transaction-level breakdown behind any pair's debt.
//
// Every function is pure and recomputes from scratch on each call (no caching,
// no incremental state), so results are always consistent with the snapshot
// passed in, and concurrent calls need no synchronization.
//
// The engine is deliberately tolerant of dangling IDs: an expense may reference
// a user that was later removed from the group. Such IDs are skipped rather
// than rejected (the exact rules differ per function, see each one), which
// means a partially-known expense can yield balances that do not sum to zero.
// That is the documented trade-off for letting users and expenses be deleted
// independently.
package calculator

import "time"

// NoDescription is the placeholder used for expenses recorded without one.
const NoDescription = "no description"

// SettledEpsilon is the threshold below which callers should treat a pair as
// settled. It absorbs floating-point residue from repeated share divisions.
// The engine itself reports exact amounts; applying the threshold is a
// presentation decision.
const SettledEpsilon = 0.01

// Participant is the minimal identity the engine needs for one group member.
type Participant struct {
	ID   string
	Name string
}

// Expense is a single payment split among participants. It mirrors
// models.Expense minus the persistence fields.
type Expense struct {
	ID             string
	Description    string
	Amount         float64
	PaidByID       string
	ParticipantIDs []string
	Date           time.Time // zero value = no date
	IsSettlement   bool
}

// PairwiseDebt is the net amount one participant owes another after both
// directions between the pair have been offset. Amount is always positive;
// at most one of (A,B)/(B,A) is ever reported.
type PairwiseDebt struct {
	DebtorID   string
	CreditorID string
	Amount     float64
}

// BreakdownItem explains one expense's contribution to a pair's mutual debt.
type BreakdownItem struct {
	ExpenseID   string
	Description string
	Date        time.Time
	TotalAmount float64 // full expense amount
	OweAmount   float64 // the counterparty's share of it
	IsPayer     bool    // true if the first queried user paid this expense
}
