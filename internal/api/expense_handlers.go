package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Arthurk12/racha-ai/internal/calculator"
	"github.com/Arthurk12/racha-ai/internal/middleware"
	"github.com/Arthurk12/racha-ai/internal/service"
)

type expenseRequest struct {
	Description    string   `json:"description"`
	Amount         float64  `json:"amount"`
	PaidByID       string   `json:"paid_by_id"`
	ParticipantIDs []string `json:"participant_ids"`
	Date           string   `json:"date"`
}

type settleRequest struct {
	DebtorID   string `json:"debtor_id"`
	CreditorID string `json:"creditor_id"`
}

// breakdownItemView is the wire representation of one breakdown entry.
type breakdownItemView struct {
	ExpenseID   string  `json:"expense_id"`
	Description string  `json:"description"`
	Date        string  `json:"date,omitempty"`
	TotalAmount float64 `json:"total_amount"`
	OweAmount   float64 `json:"owe_amount"`
	IsPayer     bool    `json:"is_payer"`
}

func (r expenseRequest) toInput() service.ExpenseInput {
	return service.ExpenseInput{
		Description:    r.Description,
		Amount:         r.Amount,
		PaidByID:       r.PaidByID,
		ParticipantIDs: r.ParticipantIDs,
		Date:           r.Date,
	}
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	expense, err := s.expenses.AddExpense(ctx, chi.URLParam(r, "groupID"), middleware.GetUserID(ctx), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseView(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.ListExpenses(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": toExpenseViews(expenses)})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	expense, err := s.expenses.UpdateExpense(ctx,
		chi.URLParam(r, "groupID"), middleware.GetUserID(ctx), chi.URLParam(r, "expenseID"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseView(expense))
}

func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := s.expenses.RemoveExpense(ctx,
		chi.URLParam(r, "groupID"), middleware.GetUserID(ctx), chi.URLParam(r, "expenseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, transfers, err := s.expenses.Balances(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if transfers == nil {
		transfers = []service.Transfer{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balances":  balances,
		"transfers": transfers,
	})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	user1 := r.URL.Query().Get("user1")
	user2 := r.URL.Query().Get("user2")

	items, err := s.expenses.Breakdown(r.Context(), chi.URLParam(r, "groupID"), user1, user2)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": toBreakdownViews(items)})
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	settlement, err := s.expenses.Settle(ctx,
		chi.URLParam(r, "groupID"), middleware.GetUserID(ctx), req.DebtorID, req.CreditorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseView(settlement))
}

func toBreakdownViews(items []calculator.BreakdownItem) []breakdownItemView {
	views := make([]breakdownItemView, len(items))
	for i, item := range items {
		views[i] = breakdownItemView{
			ExpenseID:   item.ExpenseID,
			Description: item.Description,
			TotalAmount: item.TotalAmount,
			OweAmount:   item.OweAmount,
			IsPayer:     item.IsPayer,
		}
		if !item.Date.IsZero() {
			views[i].Date = item.Date.UTC().Format(time.DateOnly)
		}
	}
	return views
}
