package models

// DefaultPIN is the PIN a user is reset to by an admin.
const DefaultPIN = "0000"

// User represents a participant in a group.
//
// Users belong to exactly one group and authenticate with a numeric PIN
// rather than an account: groups are short-lived and invite-link based, so
// the bar is "keep your roommates from editing your expenses", not banking.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// GroupID is the group this user belongs to.
	GroupID string

	// Name is the display name, unique within the group (case-insensitive).
	Name string

	// PINHash is the bcrypt hash of the user's PIN. Never exposed over the API.
	PINHash string

	// IsAdmin marks the group creator. Admins can remove users, reset PINs,
	// edit anyone's expenses and delete the group.
	IsAdmin bool

	// HasFinishedAdding signals the user is done registering expenses, so the
	// group can see when everyone is ready to settle up.
	HasFinishedAdding bool

	// CreatedAt is the Unix timestamp when the user joined.
	CreatedAt int64
}
