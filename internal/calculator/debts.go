package calculator

// ComputePairwiseDebts reduces the expense history to at most one net debt
// per pair of known participants.
//
// Accumulation is raw and unfiltered: for every expense, each non-payer
// participant owes the payer their share, whether or not either ID is still a
// known participant. Only the enumeration step is restricted to the known
// list, so debts involving removed users simply never surface.
//
// Netting happens strictly within a pair: if A owes B 100 and B owes A 60,
// the result is A owes B 40. Debts are never rerouted through a third
// participant: A owes B and B owes C stay two entries even when a shorter
// global settlement exists. Traceability wins over minimal transfer count.
//
// Pairs that net to exactly zero are omitted. Amounts are exact; callers
// typically drop pairs below SettledEpsilon before display.
func ComputePairwiseDebts(participants []Participant, expenses []Expense) []PairwiseDebt {
	// owed[from][to] = total from owes to, before netting
	owed := make(map[string]map[string]float64)

	for _, e := range expenses {
		if len(e.ParticipantIDs) == 0 {
			continue
		}
		share := e.Amount / float64(len(e.ParticipantIDs))

		for _, pid := range e.ParticipantIDs {
			if pid == e.PaidByID {
				continue
			}
			if owed[pid] == nil {
				owed[pid] = make(map[string]float64)
			}
			owed[pid][e.PaidByID] += share
		}
	}

	var debts []PairwiseDebt
	for i, u1 := range participants {
		for _, u2 := range participants[i+1:] {
			d1 := owed[u1.ID][u2.ID]
			d2 := owed[u2.ID][u1.ID]
			switch {
			case d1 > d2:
				debts = append(debts, PairwiseDebt{DebtorID: u1.ID, CreditorID: u2.ID, Amount: d1 - d2})
			case d2 > d1:
				debts = append(debts, PairwiseDebt{DebtorID: u2.ID, CreditorID: u1.ID, Amount: d2 - d1})
			}
		}
	}

	return debts
}
