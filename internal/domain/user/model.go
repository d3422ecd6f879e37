package user

import (
	"strings"
	"time"

	"github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
	"github.com/hirosato/go-cashflow-ledger/internal/common/utils"
)

// Role represents a user's permission level
type Role string

const (
	// RoleUser is the default role
	RoleUser Role = "user"
	// RoleAdmin may perform administrative operations such as deleting balances
	RoleAdmin Role = "admin"
)

// Status represents a user's account state
type Status string

const (
	// StatusActive users may authenticate
	StatusActive Status = "active"
	// StatusInactive users are blocked from authenticating
	StatusInactive Status = "inactive"
	// StatusSuspended users are temporarily blocked
	StatusSuspended Status = "suspended"
)

// User represents an account that can operate on the ledger. PasswordHash is
// a bcrypt hash and never leaves the service layer.
type User struct {
	UserID       string     `json:"userId"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// Validate checks the user attributes
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return errors.NewValidationError("username is required")
	}
	if err := utils.ValidateEmail(u.Email); err != nil {
		return err
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return errors.NewValidationError("user role must be user or admin")
	}
	return nil
}

// RegisterUserRequest represents the data needed to create a user account
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}

// AuthenticateRequest represents a login attempt
type AuthenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthenticateResult carries the issued token and the authenticated user
type AuthenticateResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
