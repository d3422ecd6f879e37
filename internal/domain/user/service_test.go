package user

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/go-cashflow-ledger/internal/common/utils"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/notification"
)

// stubUserRepo is an in-memory user.Repository
type stubUserRepo struct {
	byID    map[string]User
	byEmail map[string]string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

func (r *stubUserRepo) Create(ctx context.Context, u *User) (*User, error) {
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, errors.NewConflictError("a user with this email already exists")
	}
	r.byID[u.UserID] = *u
	r.byEmail[u.Email] = u.UserID
	return u, nil
}

func (r *stubUserRepo) GetByID(ctx context.Context, userID string) (*User, error) {
	u, ok := r.byID[userID]
	if !ok {
		return nil, errors.NewNotFoundError("user not found")
	}
	return &u, nil
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	id, ok := r.byEmail[email]
	if !ok {
		return nil, errors.NewNotFoundError("user not found")
	}
	u := r.byID[id]
	return &u, nil
}

type staticTokenSource []byte

func (s staticTokenSource) SigningSecret(ctx context.Context) ([]byte, error) {
	return []byte(s), nil
}

func newTestUserService(repo Repository) *Service {
	return NewService(repo, staticTokenSource("test-signing-secret"), notification.NopPublisher{}, slog.Default())
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active user with a hashed password", func(t *testing.T) {
		svc := newTestUserService(newStubUserRepo())

		u, err := svc.Register(ctx, &RegisterUserRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "Sup3rSecret",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, u.UserID)
		assert.Equal(t, RoleUser, u.Role)
		assert.Equal(t, StatusActive, u.Status)
		assert.NotEmpty(t, u.PasswordHash)
		assert.NotEqual(t, "Sup3rSecret", u.PasswordHash)
	})

	t.Run("rejects weak passwords", func(t *testing.T) {
		svc := newTestUserService(newStubUserRepo())

		for _, password := range []string{"short", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
			_, err := svc.Register(ctx, &RegisterUserRequest{
				Username: "alice",
				Email:    "alice@example.com",
				Password: password,
			})
			assert.Error(t, err, "password %q should be rejected", password)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		repo := newStubUserRepo()
		svc := newTestUserService(repo)

		_, err := svc.Register(ctx, &RegisterUserRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "Sup3rSecret",
		})
		require.NoError(t, err)

		_, err = svc.Register(ctx, &RegisterUserRequest{
			Username: "alice2",
			Email:    "alice@example.com",
			Password: "Sup3rSecret",
		})
		require.Error(t, err)
		appErr, ok := err.(errors.AppError)
		require.True(t, ok)
		assert.Equal(t, "CONFLICT", appErr.Code)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		svc := newTestUserService(newStubUserRepo())

		_, err := svc.Register(ctx, &RegisterUserRequest{
			Username: "alice",
			Email:    "not-an-email",
			Password: "Sup3rSecret",
		})
		assert.Error(t, err)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, svc *Service) *User {
		u, err := svc.Register(ctx, &RegisterUserRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "Sup3rSecret",
		})
		require.NoError(t, err)
		return u
	}

	t.Run("issues a verifiable token for valid credentials", func(t *testing.T) {
		svc := newTestUserService(newStubUserRepo())
		registered := register(t, svc)

		result, err := svc.Authenticate(ctx, &AuthenticateRequest{
			Email:    "alice@example.com",
			Password: "Sup3rSecret",
		})

		require.NoError(t, err)
		assert.Equal(t, registered.UserID, result.User.UserID)

		claims, err := utils.ParseToken(result.Token, []byte("test-signing-secret"))
		require.NoError(t, err)
		assert.Equal(t, registered.UserID, claims.Subject)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, string(RoleUser), claims.Role)
	})

	t.Run("wrong password fails without leaking existence", func(t *testing.T) {
		svc := newTestUserService(newStubUserRepo())
		register(t, svc)

		_, err := svc.Authenticate(ctx, &AuthenticateRequest{
			Email:    "alice@example.com",
			Password: "WrongPassw0rd",
		})

		require.Error(t, err)
		appErr, ok := err.(errors.AppError)
		require.True(t, ok)
		assert.Equal(t, "AUTHENTICATION_ERROR", appErr.Code)
	})

	t.Run("unknown email yields the same authentication error", func(t *testing.T) {
		svc := newTestUserService(newStubUserRepo())

		_, err := svc.Authenticate(ctx, &AuthenticateRequest{
			Email:    "nobody@example.com",
			Password: "Sup3rSecret",
		})

		require.Error(t, err)
		appErr, ok := err.(errors.AppError)
		require.True(t, ok)
		assert.Equal(t, "AUTHENTICATION_ERROR", appErr.Code)
	})

	t.Run("inactive users cannot authenticate", func(t *testing.T) {
		repo := newStubUserRepo()
		svc := newTestUserService(repo)
		registered := register(t, svc)

		u := repo.byID[registered.UserID]
		u.Status = StatusSuspended
		repo.byID[registered.UserID] = u

		_, err := svc.Authenticate(ctx, &AuthenticateRequest{
			Email:    "alice@example.com",
			Password: "Sup3rSecret",
		})

		require.Error(t, err)
	})
}
