package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Arthurk12/racha-ai/internal/models"
	"github.com/Arthurk12/racha-ai/internal/storage"
)

// CreateExpense persists a new expense and its participant set.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, description, amount, paid_by_id, date, is_settlement, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Description, expense.Amount,
		expense.PaidByID, dateToColumn(expense.Date), expense.IsSettlement, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, expense.ID, expense.ParticipantIDs); err != nil {
		return err
	}

	if err := touchGroup(ctx, tx, expense.GroupID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including its participant set.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var date sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, description, amount, paid_by_id, date, is_settlement, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount,
		&expense.PaidByID, &date, &expense.IsSettlement, &expense.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if expense.Date, err = dateFromColumn(date); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM expense_participants WHERE expense_id = ? ORDER BY rowid",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		expense.ParticipantIDs = append(expense.ParticipantIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return expense, nil
}

// UpdateExpense rewrites an expense's fields and replaces its participant set.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET description = ?, amount = ?, paid_by_id = ?, date = ?, is_settlement = ?
		 WHERE id = ?`,
		expense.Description, expense.Amount, expense.PaidByID,
		dateToColumn(expense.Date), expense.IsSettlement, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM expense_participants WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, expense.ID, expense.ParticipantIDs); err != nil {
		return err
	}

	if err := touchGroup(ctx, tx, expense.GroupID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteExpense removes an expense. Participants cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	expense, err := s.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	if err := touchGroup(ctx, tx, expense.GroupID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListExpenses returns all expenses of a group in insertion order, with
// participant sets attached.
func (s *SQLiteStore) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, description, amount, paid_by_id, date, is_settlement, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var date sql.NullString
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount,
			&expense.PaidByID, &date, &expense.IsSettlement, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if expense.Date, err = dateFromColumn(date); err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	// One query per expense keeps this simple; groups are small (tens of
	// expenses), so the N+1 is not worth a join here.
	for _, expense := range expenses {
		pRows, err := s.db.QueryContext(ctx,
			"SELECT user_id FROM expense_participants WHERE expense_id = ? ORDER BY rowid",
			expense.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get participants: %w", err)
		}
		for pRows.Next() {
			var userID string
			if err := pRows.Scan(&userID); err != nil {
				pRows.Close()
				return nil, fmt.Errorf("failed to scan participant: %w", err)
			}
			expense.ParticipantIDs = append(expense.ParticipantIDs, userID)
		}
		pRows.Close()
		if err := pRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate participants: %w", err)
		}
	}

	return expenses, nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, expenseID string, participantIDs []string) error {
	for _, userID := range participantIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, user_id) VALUES (?, ?)",
			expenseID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

// dateToColumn maps the zero time to NULL; anything else to RFC 3339.
func dateToColumn(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func dateFromColumn(col sql.NullString) (time.Time, error) {
	if !col.Valid {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, col.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse expense date: %w", err)
	}
	return t, nil
}
