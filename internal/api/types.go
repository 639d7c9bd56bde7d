package api

import (
	"time"

	"github.com/Arthurk12/racha-ai/internal/models"
)

// groupView is the wire representation of a group.
type groupView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// userView is the wire representation of a user. The PIN hash never leaves
// the server.
type userView struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	IsAdmin           bool   `json:"is_admin"`
	HasFinishedAdding bool   `json:"has_finished_adding"`
	CreatedAt         int64  `json:"created_at"`
}

// expenseView is the wire representation of an expense. Date is a
// "YYYY-MM-DD" string, empty when the expense has no date.
type expenseView struct {
	ID             string   `json:"id"`
	Description    string   `json:"description"`
	Amount         float64  `json:"amount"`
	PaidByID       string   `json:"paid_by_id"`
	ParticipantIDs []string `json:"participant_ids"`
	Date           string   `json:"date,omitempty"`
	IsSettlement   bool     `json:"is_settlement,omitempty"`
	CreatedAt      int64    `json:"created_at"`
}

func toGroupView(g *models.Group) groupView {
	return groupView{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt}
}

func toUserView(u *models.User) userView {
	return userView{
		ID:                u.ID,
		Name:              u.Name,
		IsAdmin:           u.IsAdmin,
		HasFinishedAdding: u.HasFinishedAdding,
		CreatedAt:         u.CreatedAt,
	}
}

func toUserViews(users []*models.User) []userView {
	views := make([]userView, len(users))
	for i, u := range users {
		views[i] = toUserView(u)
	}
	return views
}

func toExpenseView(e *models.Expense) expenseView {
	v := expenseView{
		ID:             e.ID,
		Description:    e.Description,
		Amount:         e.Amount,
		PaidByID:       e.PaidByID,
		ParticipantIDs: e.ParticipantIDs,
		IsSettlement:   e.IsSettlement,
		CreatedAt:      e.CreatedAt,
	}
	if !e.Date.IsZero() {
		v.Date = e.Date.UTC().Format(time.DateOnly)
	}
	return v
}

func toExpenseViews(expenses []*models.Expense) []expenseView {
	views := make([]expenseView, len(expenses))
	for i, e := range expenses {
		views[i] = toExpenseView(e)
	}
	return views
}
