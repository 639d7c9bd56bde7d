// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Arthurk12/racha-ai/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for group, user and expense persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Mutations that belong to a group bump the group's UpdatedAt timestamp, which
// the retention purge uses to find abandoned groups.
type Store interface {
	// CreateGroup persists a new group. The group's ID and timestamps are
	// populated by the store if unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by its ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// DeleteGroup removes a group and, by cascade, its users and expenses.
	DeleteGroup(ctx context.Context, groupID string) error

	// PurgeGroupsBefore deletes every group not updated since cutoff and
	// returns how many were removed.
	PurgeGroupsBefore(ctx context.Context, cutoff time.Time) (int, error)

	// CreateUser persists a new user in their group.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// ListUsers returns a group's users in join order.
	ListUsers(ctx context.Context, groupID string) ([]*models.User, error)

	// UpdateUserPIN replaces a user's PIN hash.
	UpdateUserPIN(ctx context.Context, userID, pinHash string) error

	// SetUserFinished flips the user's done-adding-expenses flag.
	SetUserFinished(ctx context.Context, userID string, finished bool) error

	// DeleteUser removes a user. Expenses referencing the user are kept
	// untouched; the calculator is built to tolerate the dangling IDs.
	DeleteUser(ctx context.Context, userID string) error

	// CreateExpense persists a new expense and its participant set.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense rewrites an expense's mutable fields and participant set.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpenses returns a group's expenses in insertion order. Order
	// matters: it is the tie-break for the debt breakdown sort.
	ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error)

	// Close releases any resources held by the store.
	Close() error
}
