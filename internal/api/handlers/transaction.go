package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/shopspring/decimal"

	"github.com/hirosato/go-cashflow-ledger/internal/api/response"
	"github.com/hirosato/go-cashflow-ledger/internal/common/utils"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/transaction"
)

// TransactionHandler handles transaction endpoints
type TransactionHandler struct {
	service *transaction.Service
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(service *transaction.Service) *TransactionHandler {
	return &TransactionHandler{
		service: service,
	}
}

// transactionPayload is the wire shape of a create or update request. Dates
// cross the wire as YYYY-MM-DD strings.
type transactionPayload struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	Date        string          `json:"date"`
	Category    string          `json:"category,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// Create handles POST /transactions
func (h *TransactionHandler) Create(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID

	var payload transactionPayload
	if err := json.Unmarshal([]byte(request.Body), &payload); err != nil {
		return response.BadRequest("Invalid JSON body", requestID), nil
	}

	date, err := utils.ParseDate(payload.Date)
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	tx, err := h.service.Create(ctx, &transaction.CreateTransactionRequest{
		Description: payload.Description,
		Amount:      payload.Amount,
		Kind:        transaction.Kind(payload.Kind),
		Date:        date,
		Category:    payload.Category,
		Notes:       payload.Notes,
	})
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	return response.Created(tx, requestID), nil
}

// Get handles GET /transactions/{id}
func (h *TransactionHandler) Get(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID

	transactionID := request.PathParameters["id"]
	if err := utils.ValidateUUID(transactionID); err != nil {
		return response.FromError(err, requestID), nil
	}

	tx, err := h.service.Get(ctx, transactionID)
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	return response.OK(tx, requestID), nil
}

// List handles GET /transactions?startDate=...&endDate=...&kind=...
func (h *TransactionHandler) List(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID

	startDate, err := utils.ParseDate(request.QueryStringParameters["startDate"])
	if err != nil {
		return response.FromError(err, requestID), nil
	}
	endDate, err := utils.ParseDate(request.QueryStringParameters["endDate"])
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	result, err := h.service.List(ctx, &transaction.ListTransactionsRequest{
		StartDate: startDate,
		EndDate:   endDate,
		Kind:      transaction.Kind(request.QueryStringParameters["kind"]),
	})
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	return response.SuccessWithPagination(result.Transactions, &response.Pagination{
		Total: result.TotalCount,
	}, http.StatusOK, requestID), nil
}

// Update handles PUT /transactions/{id}
func (h *TransactionHandler) Update(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID

	transactionID := request.PathParameters["id"]
	if err := utils.ValidateUUID(transactionID); err != nil {
		return response.FromError(err, requestID), nil
	}

	var payload transactionPayload
	if err := json.Unmarshal([]byte(request.Body), &payload); err != nil {
		return response.BadRequest("Invalid JSON body", requestID), nil
	}

	date, err := utils.ParseDate(payload.Date)
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	tx, err := h.service.Update(ctx, transactionID, &transaction.UpdateTransactionRequest{
		Description: payload.Description,
		Amount:      payload.Amount,
		Kind:        transaction.Kind(payload.Kind),
		Date:        date,
		Category:    payload.Category,
		Notes:       payload.Notes,
	})
	if err != nil {
		return response.FromError(err, requestID), nil
	}

	return response.OK(tx, requestID), nil
}

// Delete handles DELETE /transactions/{id}
func (h *TransactionHandler) Delete(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID

	transactionID := request.PathParameters["id"]
	if err := utils.ValidateUUID(transactionID); err != nil {
		return response.FromError(err, requestID), nil
	}

	if err := h.service.Delete(ctx, transactionID); err != nil {
		return response.FromError(err, requestID), nil
	}

	return response.NoContent(), nil
}
