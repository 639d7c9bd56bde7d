// Package service implements the application logic between the HTTP API and
// storage: group/member lifecycle, PIN authentication, expense management and
// the balance/debt views computed by the calculator engine.
package service

import "errors"

var (
	// ErrPermissionDenied is returned when the requester lacks the rights for
	// an operation (not admin, not the owner).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput is returned (wrapped) for requests that fail validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNameTaken is returned when a user name is already used in the group.
	ErrNameTaken = errors.New("name already taken in this group")

	// ErrNothingToSettle is returned when a settlement is requested for a
	// pair with no outstanding debt in that direction.
	ErrNothingToSettle = errors.New("nothing to settle for this pair")
)
