package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
	apperrors "github.com/ledgerly/securecore/internal/errors"
	financeDomain "github.com/ledgerly/securecore/internal/finance/domain"
	"github.com/ledgerly/securecore/internal/finance/http/dto"
	financeUseCase "github.com/ledgerly/securecore/internal/finance/usecase"
	"github.com/ledgerly/securecore/internal/httputil"
	customValidation "github.com/ledgerly/securecore/internal/validation"
)

// BudgetHandler handles HTTP requests for budget operations.
type BudgetHandler struct {
	financeUseCase financeUseCase.FinanceUseCase
	auditUseCase   authUseCase.AuditUseCase
	logger         *slog.Logger
}

// NewBudgetHandler creates a new budget handler with required dependencies.
func NewBudgetHandler(
	finance financeUseCase.FinanceUseCase,
	audit authUseCase.AuditUseCase,
	logger *slog.Logger,
) *BudgetHandler {
	return &BudgetHandler{
		financeUseCase: finance,
		auditUseCase:   audit,
		logger:         logger,
	}
}

// CreateHandler creates a budget for one category and month.
// POST /v1/budgets - Requires authentication.
// Returns 201 Created, or 409 Conflict if the category/month pair exists.
func (h *BudgetHandler) CreateHandler(c *gin.Context) {
	user, ok := requireUser(c, h.logger)
	if !ok {
		return
	}

	var req dto.BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	budget := &financeDomain.Budget{
		UserID:   user.ID,
		Category: req.Category,
		Limit:    req.Limit,
		Month:    req.Month,
	}

	if err := h.financeUseCase.CreateBudget(c.Request.Context(), budget); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	auditMutation(c, h.auditUseCase, authDomain.ActionDataCreate, user, "budget", budget.ID.String(), true)

	c.JSON(http.StatusCreated, dto.MapBudgetToResponse(budget))
}

// UpdateHandler replaces a budget's category, limit, and month.
// PUT /v1/budgets/:id - Requires authentication.
func (h *BudgetHandler) UpdateHandler(c *gin.Context) {
	user, ok := requireUser(c, h.logger)
	if !ok {
		return
	}
	budgetID, ok := parseIDParam(c, h.logger)
	if !ok {
		return
	}

	var req dto.BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	budget := &financeDomain.Budget{
		ID:       budgetID,
		UserID:   user.ID,
		Category: req.Category,
		Limit:    req.Limit,
		Month:    req.Month,
	}

	if err := h.financeUseCase.UpdateBudget(c.Request.Context(), budget); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	auditMutation(c, h.auditUseCase, authDomain.ActionDataUpdate, user, "budget", budgetID.String(), true)

	c.JSON(http.StatusOK, dto.MapBudgetToResponse(budget))
}

// DeleteHandler removes a budget.
// DELETE /v1/budgets/:id - Requires authentication.
// Returns 204 No Content.
func (h *BudgetHandler) DeleteHandler(c *gin.Context) {
	user, ok := requireUser(c, h.logger)
	if !ok {
		return
	}
	budgetID, ok := parseIDParam(c, h.logger)
	if !ok {
		return
	}

	if err := h.financeUseCase.DeleteBudget(c.Request.Context(), user.ID, budgetID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	auditMutation(c, h.auditUseCase, authDomain.ActionDataDelete, user, "budget", budgetID.String(), true)

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ReportHandler reports spending against every budget in a month.
// GET /v1/budgets/report?month=2026-01 - Requires authentication.
func (h *BudgetHandler) ReportHandler(c *gin.Context) {
	user, ok := requireUser(c, h.logger)
	if !ok {
		return
	}

	month := c.Query("month")
	if _, err := time.Parse("2006-01", month); err != nil {
		httputil.HandleBadRequestGin(c,
			apperrors.Wrap(apperrors.ErrInvalidInput, "month must use the YYYY-MM format"), h.logger)
		return
	}

	statuses, err := h.financeUseCase.BudgetReport(c.Request.Context(), user.ID, month)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	responses := make([]dto.BudgetStatusResponse, 0, len(statuses))
	for _, status := range statuses {
		responses = append(responses, dto.MapBudgetStatusToResponse(status))
	}

	c.JSON(http.StatusOK, gin.H{"month": month, "budgets": responses})
}
