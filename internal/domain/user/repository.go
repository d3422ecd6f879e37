package user

import "context"

// Repository defines the interface for user account persistence
type Repository interface {
	// Create a new user; fails with a CONFLICT error if the email is taken
	Create(ctx context.Context, u *User) (*User, error)

	// Get a user by ID
	GetByID(ctx context.Context, userID string) (*User, error)

	// Get a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)
}
