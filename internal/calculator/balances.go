package calculator

// ComputeBalances computes each participant's net monetary position.
// Positive = is owed money, negative = owes money.
//
// Rules:
//   - Every known participant gets an entry, zero-initialized, even with no
//     expenses.
//   - Each expense is split equally: share = amount / len(participantIDs).
//     An expense with no participants contributes nothing at all.
//   - A participant ID that is not in the known set is skipped entirely: the
//     payer is NOT credited for that unknown share either. Unknown users are
//     treated as fully absent, not as "someone else's problem", so deleting a
//     user never shifts their old debts onto the remaining members.
//   - The payer's own share is skipped (paying for yourself is neutral).
//   - An unknown payer receives no credit, but known participants still get
//     debited their shares.
//
// No errors are raised; malformed input degrades to partial or zero
// contributions. Non-finite or negative amounts propagate through the
// arithmetic unchanged; upstream validation is expected to reject them.
func ComputeBalances(participants []Participant, expenses []Expense) map[string]float64 {
	balances := make(map[string]float64, len(participants))
	for _, p := range participants {
		balances[p.ID] = 0
	}

	for _, e := range expenses {
		if len(e.ParticipantIDs) == 0 {
			continue
		}
		share := e.Amount / float64(len(e.ParticipantIDs))

		for _, pid := range e.ParticipantIDs {
			if _, known := balances[pid]; !known {
				continue
			}
			if pid == e.PaidByID {
				continue
			}
			if _, known := balances[e.PaidByID]; known {
				balances[e.PaidByID] += share
			}
			balances[pid] -= share
		}
	}

	return balances
}
