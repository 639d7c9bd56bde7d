package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/Arthurk12/racha-ai/internal/calculator"
	"github.com/Arthurk12/racha-ai/internal/models"
)

// SettlementDescription is the description given to auto-created settlement
// expenses.
const SettlementDescription = "Settlement payment"

// ExpenseInput carries the caller-editable fields of an expense.
type ExpenseInput struct {
	Description    string
	Amount         float64
	PaidByID       string
	ParticipantIDs []string
	Date           string // "2006-01-02"; empty means today
}

// UserBalance is one user's net position with their display name resolved.
type UserBalance struct {
	UserID  string  `json:"user_id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// Transfer is a suggested settlement payment between two users.
type Transfer struct {
	DebtorID     string  `json:"debtor_id"`
	DebtorName   string  `json:"debtor_name"`
	CreditorID   string  `json:"creditor_id"`
	CreditorName string  `json:"creditor_name"`
	Amount       float64 `json:"amount"`
}

// ExpenseService manages expenses and exposes the calculator's derived views.
type ExpenseService struct {
	store  expenseStore
	groups *GroupService
}

// expenseStore is the subset of storage.Store the expense service needs.
type expenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error)
	ListUsers(ctx context.Context, groupID string) ([]*models.User, error)
}

// NewExpenseService creates a new ExpenseService. The group service is used
// for membership and permission checks.
func NewExpenseService(store expenseStore, groups *GroupService) *ExpenseService {
	return &ExpenseService{store: store, groups: groups}
}

// AddExpense validates and records a new expense. Non-admins can only record
// expenses they paid themselves.
func (s *ExpenseService) AddExpense(ctx context.Context, groupID, requesterID string, in ExpenseInput) (*models.Expense, error) {
	requester, err := s.groups.memberOf(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}
	if err := validateExpenseInput(in); err != nil {
		return nil, err
	}
	if in.PaidByID != requesterID && !requester.IsAdmin {
		return nil, ErrPermissionDenied
	}

	date, err := parseExpenseDate(in.Date)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:        groupID,
		Description:    strings.TrimSpace(in.Description),
		Amount:         in.Amount,
		PaidByID:       in.PaidByID,
		ParticipantIDs: in.ParticipantIDs,
		Date:           date,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	slog.Info("expense added",
		"group_id", groupID,
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"participants", len(expense.ParticipantIDs),
	)
	return expense, nil
}

// UpdateExpense rewrites an existing expense. Allowed for the payer of the
// stored expense or an admin.
func (s *ExpenseService) UpdateExpense(ctx context.Context, groupID, requesterID, expenseID string, in ExpenseInput) (*models.Expense, error) {
	requester, err := s.groups.memberOf(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}
	expense, err := s.expenseInGroup(ctx, groupID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.PaidByID != requesterID && !requester.IsAdmin {
		return nil, ErrPermissionDenied
	}
	if err := validateExpenseInput(in); err != nil {
		return nil, err
	}

	date, err := parseExpenseDate(in.Date)
	if err != nil {
		return nil, err
	}

	expense.Description = strings.TrimSpace(in.Description)
	expense.Amount = in.Amount
	expense.PaidByID = in.PaidByID
	expense.ParticipantIDs = in.ParticipantIDs
	expense.Date = date

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// RemoveExpense deletes an expense. Allowed for its payer or an admin.
func (s *ExpenseService) RemoveExpense(ctx context.Context, groupID, requesterID, expenseID string) error {
	requester, err := s.groups.memberOf(ctx, groupID, requesterID)
	if err != nil {
		return err
	}
	expense, err := s.expenseInGroup(ctx, groupID, expenseID)
	if err != nil {
		return err
	}
	if expense.PaidByID != requesterID && !requester.IsAdmin {
		return ErrPermissionDenied
	}

	return s.store.DeleteExpense(ctx, expenseID)
}

// ListExpenses returns a group's expenses in insertion order.
func (s *ExpenseService) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.store.ListExpenses(ctx, groupID)
}

// Balances recomputes every member's net position and the suggested transfers
// that would settle the group. Transfers below the settled threshold are
// dropped; they are floating-point residue, not real debt.
func (s *ExpenseService) Balances(ctx context.Context, groupID string) ([]UserBalance, []Transfer, error) {
	users, expenses, err := s.snapshot(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	participants := toParticipants(users)
	engineExpenses := toEngineExpenses(expenses)

	balances := calculator.ComputeBalances(participants, engineExpenses)

	names := make(map[string]string, len(users))
	userBalances := make([]UserBalance, len(users))
	for i, u := range users {
		names[u.ID] = u.Name
		userBalances[i] = UserBalance{UserID: u.ID, Name: u.Name, Balance: balances[u.ID]}
	}

	var transfers []Transfer
	for _, d := range calculator.ComputePairwiseDebts(participants, engineExpenses) {
		if d.Amount < calculator.SettledEpsilon {
			continue
		}
		transfers = append(transfers, Transfer{
			DebtorID:     d.DebtorID,
			DebtorName:   names[d.DebtorID],
			CreditorID:   d.CreditorID,
			CreditorName: names[d.CreditorID],
			Amount:       d.Amount,
		})
	}

	return userBalances, transfers, nil
}

// Breakdown explains which expenses produced the mutual debt between two
// users. Swapping the IDs flips each item's IsPayer but selects the same
// expenses.
func (s *ExpenseService) Breakdown(ctx context.Context, groupID, user1ID, user2ID string) ([]calculator.BreakdownItem, error) {
	if user1ID == "" || user2ID == "" || user1ID == user2ID {
		return nil, fmt.Errorf("%w: two distinct user IDs required", ErrInvalidInput)
	}

	expenses, err := s.store.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return calculator.DebtBreakdown(user1ID, user2ID, toEngineExpenses(expenses)), nil
}

// Settle records the debtor paying the creditor their current net debt, as a
// settlement-flagged 1:1 expense. The next balance computation nets the pair
// to zero. Allowed for the debtor themselves or an admin.
func (s *ExpenseService) Settle(ctx context.Context, groupID, requesterID, debtorID, creditorID string) (*models.Expense, error) {
	requester, err := s.groups.memberOf(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}
	if requesterID != debtorID && !requester.IsAdmin {
		return nil, ErrPermissionDenied
	}

	users, expenses, err := s.snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	debts := calculator.ComputePairwiseDebts(toParticipants(users), toEngineExpenses(expenses))
	var amount float64
	for _, d := range debts {
		if d.DebtorID == debtorID && d.CreditorID == creditorID {
			amount = d.Amount
			break
		}
	}
	if amount < calculator.SettledEpsilon {
		return nil, ErrNothingToSettle
	}

	settlement := &models.Expense{
		GroupID:        groupID,
		Description:    SettlementDescription,
		Amount:         amount,
		PaidByID:       debtorID,
		ParticipantIDs: []string{creditorID},
		Date:           normalizeDate(time.Now()),
		IsSettlement:   true,
	}
	if err := s.store.CreateExpense(ctx, settlement); err != nil {
		return nil, err
	}

	slog.Info("settlement recorded",
		"group_id", groupID,
		"debtor_id", debtorID,
		"creditor_id", creditorID,
		"amount", amount,
	)
	return settlement, nil
}

func (s *ExpenseService) snapshot(ctx context.Context, groupID string) ([]*models.User, []*models.Expense, error) {
	users, err := s.store.ListUsers(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	return users, expenses, nil
}

func (s *ExpenseService) expenseInGroup(ctx context.Context, groupID, expenseID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.GroupID != groupID {
		return nil, fmt.Errorf("%w: expense not in group", ErrInvalidInput)
	}
	return expense, nil
}

func validateExpenseInput(in ExpenseInput) error {
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description required", ErrInvalidInput)
	}
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return fmt.Errorf("%w: amount must be a positive number", ErrInvalidInput)
	}
	if in.PaidByID == "" {
		return fmt.Errorf("%w: payer required", ErrInvalidInput)
	}
	if len(in.ParticipantIDs) == 0 {
		return fmt.Errorf("%w: at least one participant required", ErrInvalidInput)
	}
	return nil
}

// parseExpenseDate parses a "YYYY-MM-DD" date, defaulting to today.
func parseExpenseDate(s string) (time.Time, error) {
	if s == "" {
		return normalizeDate(time.Now()), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return normalizeDate(t), nil
}

// normalizeDate pins a date to noon UTC so it renders as the same calendar
// day in any timezone.
func normalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
}

func toParticipants(users []*models.User) []calculator.Participant {
	participants := make([]calculator.Participant, len(users))
	for i, u := range users {
		participants[i] = calculator.Participant{ID: u.ID, Name: u.Name}
	}
	return participants
}

func toEngineExpenses(expenses []*models.Expense) []calculator.Expense {
	out := make([]calculator.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = calculator.Expense{
			ID:             e.ID,
			Description:    e.Description,
			Amount:         e.Amount,
			PaidByID:       e.PaidByID,
			ParticipantIDs: e.ParticipantIDs,
			Date:           e.Date,
			IsSettlement:   e.IsSettlement,
		}
	}
	return out
}
