package calculator

import "sort"

// DebtBreakdown lists every expense that ties user1 and user2 together in a
// payer/participant relationship, i.e. the provenance of their mutual debt.
//
// The query is order-sensitive only in polarity: swapping the two IDs selects
// the same expenses but flips IsPayer on every item. An expense qualifies when
// user1 paid and user2 participated (IsPayer=true, a credit toward user1), or
// user2 paid and user1 participated (IsPayer=false, a debit against user1).
// OweAmount is always the counterparty's equal share of the expense.
//
// Items are sorted by date, newest first. Undated expenses sort as oldest, at
// the end; ties keep the input expense order.
func DebtBreakdown(user1ID, user2ID string, expenses []Expense) []BreakdownItem {
	var items []BreakdownItem

	for _, e := range expenses {
		if len(e.ParticipantIDs) == 0 {
			continue
		}

		var isPayer bool
		switch {
		case e.PaidByID == user1ID && containsID(e.ParticipantIDs, user2ID):
			isPayer = true
		case e.PaidByID == user2ID && containsID(e.ParticipantIDs, user1ID):
			isPayer = false
		default:
			continue
		}

		description := e.Description
		if description == "" {
			description = NoDescription
		}

		items = append(items, BreakdownItem{
			ExpenseID:   e.ID,
			Description: description,
			Date:        e.Date,
			TotalAmount: e.Amount,
			OweAmount:   e.Amount / float64(len(e.ParticipantIDs)),
			IsPayer:     isPayer,
		})
	}

	// Zero dates compare older than everything, which lands them last in a
	// descending sort with no special casing.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})

	return items
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
