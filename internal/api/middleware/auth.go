package middleware

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/hirosato/go-cashflow-ledger/internal/api/response"
	"github.com/hirosato/go-cashflow-ledger/internal/common/utils"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/user"
)

// UserClaimsKey is the key for the user claims in the request context
type UserClaimsKey string

const (
	// UserClaimsKeyValue is the context key for user claims
	UserClaimsKeyValue UserClaimsKey = "userClaims"
)

// AuthMiddleware is a middleware for JWT authentication
type AuthMiddleware struct {
	tokens user.TokenSource
	log    *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens user.TokenSource, log *zap.Logger) AuthMiddleware {
	return AuthMiddleware{
		tokens: tokens,
		log:    log,
	}
}

// Handle handles the auth middleware
func (m AuthMiddleware) Handle(next APIGatewayHandler) APIGatewayHandler {
	return func(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		// Check for public paths that don't require authentication
		if isPublicPath(request.Path, request.HTTPMethod) {
			return next(ctx, logger, request)
		}

		token, err := utils.ExtractBearerToken(request.Headers["Authorization"])
		if err != nil {
			return response.AuthenticationError(err.Error(), request.RequestContext.RequestID), nil
		}

		secret, err := m.tokens.SigningSecret(ctx)
		if err != nil {
			m.log.Error("failed to load signing secret", zap.Error(err))
			return response.InternalError("failed to load signing secret", err, request.RequestContext.RequestID), nil
		}

		claims, err := utils.ParseToken(token, secret)
		if err != nil {
			m.log.Warn("token validation failed", zap.Error(err))
			return response.AuthenticationError("invalid or expired token", request.RequestContext.RequestID), nil
		}

		// Add the claims to the context
		ctx = context.WithValue(ctx, UserClaimsKeyValue, claims)

		return next(ctx, logger, request)
	}
}

// GetClaims gets the authenticated user's claims from the request context
func GetClaims(ctx context.Context) (*utils.LedgerClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKeyValue).(*utils.LedgerClaims)
	return claims, ok
}

// GetUserID gets the authenticated user's ID from the request context
func GetUserID(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok {
		return ""
	}
	return claims.Subject
}

// IsAdmin reports whether the authenticated user has the admin role
func IsAdmin(ctx context.Context) bool {
	claims, ok := GetClaims(ctx)
	return ok && claims.Role == string(user.RoleAdmin)
}

// isPublicPath checks if the path is public (doesn't require authentication)
func isPublicPath(path string, method string) bool {
	publicPaths := map[string][]string{
		"/users/register": {"POST"},
		"/users/login":    {"POST"},
		"/health":         {"GET"},
	}

	if methods, ok := publicPaths[path]; ok {
		for _, allowedMethod := range methods {
			if allowedMethod == method {
				return true
			}
		}
	}

	// CORS preflight
	return method == "OPTIONS"
}
