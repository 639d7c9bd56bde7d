package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Arthurk12/racha-ai/internal/auth"
	"github.com/Arthurk12/racha-ai/internal/models"
	"github.com/Arthurk12/racha-ai/internal/storage"
)

// GroupService manages groups, membership and PIN authentication.
type GroupService struct {
	store storage.Store
	jwt   *auth.JWTManager
}

// NewGroupService creates a new GroupService with the given storage backend
// and token manager.
func NewGroupService(store storage.Store, jwt *auth.JWTManager) *GroupService {
	return &GroupService{store: store, jwt: jwt}
}

// CreateGroup creates a group together with its admin user and returns a
// session token for the admin.
func (s *GroupService) CreateGroup(ctx context.Context, name, adminName, adminPIN string) (*models.Group, *models.User, string, error) {
	name = strings.TrimSpace(name)
	adminName = strings.TrimSpace(adminName)
	if name == "" {
		return nil, nil, "", fmt.Errorf("%w: group name required", ErrInvalidInput)
	}
	if adminName == "" {
		return nil, nil, "", fmt.Errorf("%w: admin name required", ErrInvalidInput)
	}
	if err := auth.ValidatePIN(adminPIN); err != nil {
		return nil, nil, "", err
	}

	pinHash, err := auth.HashPIN(adminPIN)
	if err != nil {
		return nil, nil, "", err
	}

	group := &models.Group{Name: name}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, nil, "", err
	}

	admin := &models.User{
		GroupID: group.ID,
		Name:    adminName,
		PINHash: pinHash,
		IsAdmin: true,
	}
	if err := s.store.CreateUser(ctx, admin); err != nil {
		return nil, nil, "", err
	}

	token, err := s.jwt.Generate(admin)
	if err != nil {
		return nil, nil, "", err
	}

	slog.Info("group created", "group_id", group.ID, "admin_id", admin.ID)
	return group, admin, token, nil
}

// GetGroup retrieves a group and its member list.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, []*models.User, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	users, err := s.store.ListUsers(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	return group, users, nil
}

// DeleteGroup removes a group and everything in it. Admin only.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, requesterID string) error {
	if err := s.requireAdmin(ctx, groupID, requesterID); err != nil {
		return err
	}
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	slog.Info("group deleted", "group_id", groupID, "requester_id", requesterID)
	return nil
}

// AddUser joins a new user to the group and returns a session token.
// Names are unique within a group, compared case-insensitively.
func (s *GroupService) AddUser(ctx context.Context, groupID, name, pin string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if err := auth.ValidatePIN(pin); err != nil {
		return nil, "", err
	}

	// Ensure the group exists before anything else.
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, "", err
	}

	existing, err := s.store.ListUsers(ctx, groupID)
	if err != nil {
		return nil, "", err
	}
	for _, u := range existing {
		if strings.EqualFold(u.Name, name) {
			return nil, "", ErrNameTaken
		}
	}

	pinHash, err := auth.HashPIN(pin)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		GroupID: groupID,
		Name:    name,
		PINHash: pinHash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("user joined", "group_id", groupID, "user_id", user.ID)
	return user, token, nil
}

// Login verifies a user's PIN and returns a session token.
func (s *GroupService) Login(ctx context.Context, groupID, userID, pin string) (*models.User, string, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, "", auth.ErrInvalidCredentials
	}
	if user.GroupID != groupID {
		return nil, "", auth.ErrInvalidCredentials
	}
	if err := auth.CheckPIN(user.PINHash, pin); err != nil {
		return nil, "", err
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// RemoveUser removes a user from the group. Allowed for the user themselves
// or an admin. The user's expense history stays behind; the calculator
// tolerates the dangling references.
func (s *GroupService) RemoveUser(ctx context.Context, groupID, requesterID, targetID string) error {
	requester, err := s.memberOf(ctx, groupID, requesterID)
	if err != nil {
		return err
	}
	if requester.ID != targetID && !requester.IsAdmin {
		return ErrPermissionDenied
	}
	if _, err := s.memberOf(ctx, groupID, targetID); err != nil {
		return err
	}

	if err := s.store.DeleteUser(ctx, targetID); err != nil {
		return err
	}
	slog.Info("user removed", "group_id", groupID, "user_id", targetID, "requester_id", requesterID)
	return nil
}

// ResetPIN resets the target user's PIN to the default. Admin only.
func (s *GroupService) ResetPIN(ctx context.Context, groupID, requesterID, targetID string) error {
	if err := s.requireAdmin(ctx, groupID, requesterID); err != nil {
		return err
	}
	if _, err := s.memberOf(ctx, groupID, targetID); err != nil {
		return err
	}

	pinHash, err := auth.HashPIN(models.DefaultPIN)
	if err != nil {
		return err
	}
	if err := s.store.UpdateUserPIN(ctx, targetID, pinHash); err != nil {
		return err
	}
	slog.Info("PIN reset", "group_id", groupID, "user_id", targetID, "requester_id", requesterID)
	return nil
}

// UpdatePIN changes a user's own PIN.
func (s *GroupService) UpdatePIN(ctx context.Context, groupID, requesterID, targetID, newPIN string) error {
	if requesterID != targetID {
		return ErrPermissionDenied
	}
	if _, err := s.memberOf(ctx, groupID, targetID); err != nil {
		return err
	}
	if err := auth.ValidatePIN(newPIN); err != nil {
		return err
	}

	pinHash, err := auth.HashPIN(newPIN)
	if err != nil {
		return err
	}
	return s.store.UpdateUserPIN(ctx, targetID, pinHash)
}

// ToggleFinished flips the user's done-adding-expenses flag.
func (s *GroupService) ToggleFinished(ctx context.Context, groupID, requesterID, targetID string) (*models.User, error) {
	requester, err := s.memberOf(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}
	if requester.ID != targetID && !requester.IsAdmin {
		return nil, ErrPermissionDenied
	}
	target, err := s.memberOf(ctx, groupID, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetUserFinished(ctx, targetID, !target.HasFinishedAdding); err != nil {
		return nil, err
	}
	target.HasFinishedAdding = !target.HasFinishedAdding
	return target, nil
}

// PurgeInactive deletes groups with no activity within maxAge. It backs the
// retention cron: abandoned groups and their data expire instead of piling up.
func (s *GroupService) PurgeInactive(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	n, err := s.store.PurgeGroupsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("purged inactive groups", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

// memberOf fetches a user and checks they belong to the group.
func (s *GroupService) memberOf(ctx context.Context, groupID, userID string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.GroupID != groupID {
		return nil, fmt.Errorf("user %s in group %s: %w", userID, groupID, storage.ErrNotFound)
	}
	return user, nil
}

func (s *GroupService) requireAdmin(ctx context.Context, groupID, userID string) error {
	user, err := s.memberOf(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !user.IsAdmin {
		return ErrPermissionDenied
	}
	return nil
}
