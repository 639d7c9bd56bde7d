package models

// Group represents a shared-expense group.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	// It doubles as the invite token: knowing the ID is enough to join.
	ID string

	// Name is the display name of the group (e.g., "Viagem Floripa").
	Name string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last write touching this group
	// (member or expense changes). The retention purge deletes groups whose
	// UpdatedAt is older than the configured window.
	UpdatedAt int64
}
