package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hirosato/go-cashflow-ledger/internal/api/middleware"
	"github.com/hirosato/go-cashflow-ledger/internal/api/response"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/user"
)

// UserHandler handles user account endpoints
type UserHandler struct {
	service *user.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *user.Service) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// Register handles POST /users/register
func (h *UserHandler) Register(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID

	var req user.RegisterUserRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return response.BadRequest("Invalid JSON body", requestID), nil
	}

	// Self-registration never grants admin
	req.Role = user.RoleUser

	created, err := h.service.Register(ctx, &req)
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	return response.Created(created, requestID), nil
}

// Login handles POST /users/login
func (h *UserHandler) Login(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID

	var req user.AuthenticateRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return response.BadRequest("Invalid JSON body", requestID), nil
	}

	result, err := h.service.Authenticate(ctx, &req)
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	return response.OK(result, requestID), nil
}

// Me handles GET /users/me
func (h *UserHandler) Me(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return response.AuthenticationError("not authenticated", requestID), nil
	}

	u, err := h.service.Get(ctx, userID)
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	return response.OK(u, requestID), nil
}
