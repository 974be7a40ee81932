// Package http provides HTTP handlers for personal finance data:
// transactions, budgets, and savings goals. Every handler operates on the
// authenticated user's own data; mutations record audit events.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	authHTTP "github.com/ledgerly/securecore/internal/auth/http"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
	apperrors "github.com/ledgerly/securecore/internal/errors"
	financeDomain "github.com/ledgerly/securecore/internal/finance/domain"
	"github.com/ledgerly/securecore/internal/finance/http/dto"
	financeUseCase "github.com/ledgerly/securecore/internal/finance/usecase"
	"github.com/ledgerly/securecore/internal/httputil"
	customValidation "github.com/ledgerly/securecore/internal/validation"
)

// TransactionHandler handles HTTP requests for transaction operations.
type TransactionHandler struct {
	financeUseCase financeUseCase.FinanceUseCase
	auditUseCase   authUseCase.AuditUseCase
	logger         *slog.Logger
}

// NewTransactionHandler creates a new transaction handler with required
// dependencies.
func NewTransactionHandler(
	finance financeUseCase.FinanceUseCase,
	audit authUseCase.AuditUseCase,
	logger *slog.Logger,
) *TransactionHandler {
	return &TransactionHandler{
		financeUseCase: finance,
		auditUseCase:   audit,
		logger:         logger,
	}
}

// auditMutation records a data mutation event for the acting user.
func auditMutation(
	c *gin.Context,
	audit authUseCase.AuditUseCase,
	action authDomain.Action,
	actor *authDomain.User,
	resource, resourceID string,
	success bool,
) {
	sessionID, _ := authHTTP.GetSessionID(c.Request.Context())
	audit.LogEvent(&authUseCase.Entry{
		Actor:      actor.ID.String(),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		SessionID:  sessionID,
		Success:    success,
	})
}

// requireUser pulls the authenticated user from the context or answers 401.
func requireUser(c *gin.Context, logger *slog.Logger) (*authDomain.User, bool) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok || user == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
		return nil, false
	}
	return user, true
}

// parseIDParam parses the :id path parameter as a UUID.
func parseIDParam(c *gin.Context, logger *slog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid ID format: must be a valid UUID"),
			logger)
		return uuid.Nil, false
	}
	return id, true
}

// CreateHandler records a new transaction.
// POST /v1/transactions - Requires authentication.
// Returns 201 Created with the transaction.
func (h *TransactionHandler) CreateHandler(c *gin.Context) {
	user, ok := requireUser(c, h.logger)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	tx := &financeDomain.Transaction{
		UserID:      user.ID,
		Type:        financeDomain.TransactionType(req.Type),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		OccurredAt:  req.OccurredAt,
	}

	if err := h.financeUseCase.CreateTransaction(c.Request.Context(), tx); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	auditMutation(c, h.auditUseCase, authDomain.ActionDataCreate, user, "transaction", tx.ID.String(), true)

	c.JSON(http.StatusCreated, dto.MapTransactionToResponse(tx))
}

// GetHandler retrieves one transaction.
// GET /v1/transactions/:id - Requires authentication.
func (h *TransactionHandler) GetHandler(c *gin.Context) {
	user, ok := requireUser(c, h.logger)
	if !ok {
		return
	}
	txID, ok := parseIDParam(c, h.logger)
	if !ok {
		return
	}

	tx, err := h.financeUseCase.GetTransaction(c.Request.Context(), user.ID, txID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTransactionToResponse(tx))
}

// ListHandler lists the user's transactions, newest first, optionally
// bounded by from/to (RFC 3339).
// GET /v1/transactions?from=...&to=...&offset=0&limit=50
func (h *TransactionHandler) ListHandler(c *gin.Context) {
	user, ok := requireUser(c, h.logger)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.HandleBadRequestGin(c,
				apperrors.Wrap(apperrors.ErrInvalidInput, "from must be RFC 3339"), h.logger)
			return
		}
		from = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.HandleBadRequestGin(c,
				apperrors.Wrap(apperrors.ErrInvalidInput, "to must be RFC 3339"), h.logger)
			return
		}
		to = &parsed
	}

	transactions, err := h.financeUseCase.ListTransactions(c.Request.Context(), user.ID, from, to, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	responses := make([]dto.TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		responses = append(responses, dto.MapTransactionToResponse(tx))
	}

	c.JSON(http.StatusOK, gin.H{"transactions": responses, "offset": offset, "limit": limit})
}

// UpdateHandler replaces a transaction's mutable fields.
// PUT /v1/transactions/:id - Requires authentication.
func (h *TransactionHandler) UpdateHandler(c *gin.Context) {
	user, ok := requireUser(c, h.logger)
	if !ok {
		return
	}
	txID, ok := parseIDParam(c, h.logger)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	tx := &financeDomain.Transaction{
		ID:          txID,
		UserID:      user.ID,
		Type:        financeDomain.TransactionType(req.Type),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		OccurredAt:  req.OccurredAt,
	}

	if err := h.financeUseCase.UpdateTransaction(c.Request.Context(), tx); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	auditMutation(c, h.auditUseCase, authDomain.ActionDataUpdate, user, "transaction", txID.String(), true)

	c.JSON(http.StatusOK, dto.MapTransactionToResponse(tx))
}

// DeleteHandler removes a transaction.
// DELETE /v1/transactions/:id - Requires authentication.
// Returns 204 No Content.
func (h *TransactionHandler) DeleteHandler(c *gin.Context) {
	user, ok := requireUser(c, h.logger)
	if !ok {
		return
	}
	txID, ok := parseIDParam(c, h.logger)
	if !ok {
		return
	}

	if err := h.financeUseCase.DeleteTransaction(c.Request.Context(), user.ID, txID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	auditMutation(c, h.auditUseCase, authDomain.ActionDataDelete, user, "transaction", txID.String(), true)

	c.Data(http.StatusNoContent, "application/json", nil)
}
