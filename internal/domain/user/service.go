package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hirosato/go-cashflow-ledger/internal/common/utils"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/notification"
)

// TokenSource supplies the JWT signing secret
type TokenSource interface {
	SigningSecret(ctx context.Context) ([]byte, error)
}

// Service provides user account business logic
type Service struct {
	repo      Repository
	tokens    TokenSource
	publisher notification.Publisher
	logger    *slog.Logger
}

// NewService creates a new user service
func NewService(repo Repository, tokens TokenSource, publisher notification.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		tokens:    tokens,
		publisher: publisher,
		logger:    logger,
	}
}

// Register creates a new user account with a bcrypt-hashed password
func (s *Service) Register(ctx context.Context, req *RegisterUserRequest) (*User, error) {
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	u := &User{
		UserID:       uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         role,
		Status:       StatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}

	event := notification.UserCreatedEvent{
		UserID:     created.UserID,
		Username:   created.Username,
		Email:      created.Email,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event, notification.ChannelUserCreated); err != nil {
		s.logger.Error("failed to publish user created event", "userId", created.UserID, "error", err)
	}

	return created, nil
}

// Authenticate verifies credentials and issues a signed token
func (s *Service) Authenticate(ctx context.Context, req *AuthenticateRequest) (*AuthenticateResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, errors.NewValidationError("email and password are required")
	}

	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewAuthenticationError("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.NewAuthenticationError("invalid credentials")
	}

	if u.Status != StatusActive {
		return nil, errors.NewAuthenticationError("user account is not active")
	}

	secret, err := s.tokens.SigningSecret(ctx)
	if err != nil {
		return nil, errors.NewInternalError("failed to load signing secret", err)
	}

	token, err := utils.GenerateToken(secret, u.UserID, u.Username, u.Email, string(u.Role))
	if err != nil {
		return nil, errors.NewInternalError("failed to sign token", err)
	}

	s.logger.Info("user authenticated", "userId", u.UserID)

	return &AuthenticateResult{Token: token, User: u}, nil
}

// Get retrieves a user by ID
func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	if err := utils.ValidateUUID(userID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}
