package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hirosato/go-cashflow-ledger/internal/api/middleware"
	"github.com/hirosato/go-cashflow-ledger/internal/api/response"
	"github.com/hirosato/go-cashflow-ledger/internal/common/utils"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/balance"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
)

// BalanceHandler handles daily balance endpoints
type BalanceHandler struct {
	service *balance.Service
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(service *balance.Service) *BalanceHandler {
	return &BalanceHandler{
		service: service,
	}
}

// Consolidate handles POST /balances/consolidate. It recomputes the aggregate
// for the requested day and answers 201 when the record was first created,
// 200 when an existing record was recomputed.
func (h *BalanceHandler) Consolidate(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID

	var payload struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal([]byte(request.Body), &payload); err != nil {
		return response.BadRequest("Invalid JSON body", requestID), nil
	}

	date, err := utils.ParseDate(payload.Date)
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	b, wasCreated, err := h.service.Consolidate(ctx, date)
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	result := balance.ConsolidateResult{
		Balance:    b,
		WasCreated: wasCreated,
	}
	if wasCreated {
		return response.Created(result, requestID), nil
	}
	return response.OK(result, requestID), nil
}

// Get handles GET /balances/{date}
func (h *BalanceHandler) Get(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID

	date, err := utils.ParseDate(request.PathParameters["date"])
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	b, err := h.service.Get(ctx, date)
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	return response.OK(b, requestID), nil
}

// GetRange handles GET /balances?startDate=...&endDate=...
func (h *BalanceHandler) GetRange(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID

	startDate, err := utils.ParseDate(request.QueryStringParameters["startDate"])
	if err != nil {
		return response.FromError(err, requestID), nil
	}
	endDate, err := utils.ParseDate(request.QueryStringParameters["endDate"])
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	balances, err := h.service.GetRange(ctx, startDate, endDate)
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	return response.SuccessWithPagination(balances, &response.Pagination{
		Total: len(balances),
	}, http.StatusOK, requestID), nil
}

// Delete handles DELETE /balances/{date}. Admin only.
func (h *BalanceHandler) Delete(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID

	if !middleware.IsAdmin(ctx) {
		return response.Error(errors.NewAuthenticationError("admin role required"), requestID), nil
	}

	date, err := utils.ParseDate(request.PathParameters["date"])
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	if err := h.service.Delete(ctx, date); err != nil {
		return response.FromError(err, requestID), nil
	}

	return response.NoContent(), nil
}
