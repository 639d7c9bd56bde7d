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

// CreateUser inserts a new user into their group.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, group_id, name, pin_hash, is_admin, has_finished_adding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.GroupID, user.Name, user.PINHash, user.IsAdmin, user.HasFinishedAdding, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if err := touchGroup(ctx, tx, user.GroupID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, name, pin_hash, is_admin, has_finished_adding, created_at
		 FROM users WHERE id = ?`,
		userID,
	).Scan(&user.ID, &user.GroupID, &user.Name, &user.PINHash,
		&user.IsAdmin, &user.HasFinishedAdding, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// ListUsers returns all users of a group in join order.
func (s *SQLiteStore) ListUsers(ctx context.Context, groupID string) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, name, pin_hash, is_admin, has_finished_adding, created_at
		 FROM users WHERE group_id = ? ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.GroupID, &user.Name, &user.PINHash,
			&user.IsAdmin, &user.HasFinishedAdding, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// UpdateUserPIN replaces a user's PIN hash.
func (s *SQLiteStore) UpdateUserPIN(ctx context.Context, userID, pinHash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET pin_hash = ? WHERE id = ?",
		pinHash, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user PIN: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}

	return nil
}

// SetUserFinished flips the user's done-adding-expenses flag.
func (s *SQLiteStore) SetUserFinished(ctx context.Context, userID string, finished bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET has_finished_adding = ? WHERE id = ?",
		finished, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}

	return nil
}

// DeleteUser removes a user, leaving their expense history untouched.
func (s *SQLiteStore) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := touchGroup(ctx, tx, user.GroupID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
