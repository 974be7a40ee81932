package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
	financeDomain "github.com/ledgerly/securecore/internal/finance/domain"
	"github.com/ledgerly/securecore/internal/finance/http/dto"
	financeUseCase "github.com/ledgerly/securecore/internal/finance/usecase"
	"github.com/ledgerly/securecore/internal/httputil"
	customValidation "github.com/ledgerly/securecore/internal/validation"
)

// GoalHandler handles HTTP requests for savings goal operations.
type GoalHandler struct {
	financeUseCase financeUseCase.FinanceUseCase
	auditUseCase   authUseCase.AuditUseCase
	logger         *slog.Logger
}

// NewGoalHandler creates a new goal handler with required dependencies.
func NewGoalHandler(
	finance financeUseCase.FinanceUseCase,
	audit authUseCase.AuditUseCase,
	logger *slog.Logger,
) *GoalHandler {
	return &GoalHandler{
		financeUseCase: finance,
		auditUseCase:   audit,
		logger:         logger,
	}
}

// CreateHandler creates a savings goal.
// POST /v1/goals - Requires authentication.
// Returns 201 Created with the goal.
func (h *GoalHandler) CreateHandler(c *gin.Context) {
	user, ok := requireUser(c, h.logger)
	if !ok {
		return
	}

	var req dto.GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	goal := &financeDomain.Goal{
		UserID:       user.ID,
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		Deadline:     req.Deadline,
	}

	if err := h.financeUseCase.CreateGoal(c.Request.Context(), goal); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	auditMutation(c, h.auditUseCase, authDomain.ActionDataCreate, user, "goal", goal.ID.String(), true)

	c.JSON(http.StatusCreated, dto.MapGoalToResponse(goal))
}

// ListHandler lists the user's goals, oldest first.
// GET /v1/goals - Requires authentication.
func (h *GoalHandler) ListHandler(c *gin.Context) {
	user, ok := requireUser(c, h.logger)
	if !ok {
		return
	}

	goals, err := h.financeUseCase.ListGoals(c.Request.Context(), user.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	responses := make([]dto.GoalResponse, 0, len(goals))
	for _, goal := range goals {
		responses = append(responses, dto.MapGoalToResponse(goal))
	}

	c.JSON(http.StatusOK, gin.H{"goals": responses})
}

// ContributeHandler adds an amount to a goal's saved total.
// POST /v1/goals/:id/contribute - Requires authentication.
// Returns 200 OK with the updated goal.
func (h *GoalHandler) ContributeHandler(c *gin.Context) {
	user, ok := requireUser(c, h.logger)
	if !ok {
		return
	}
	goalID, ok := parseIDParam(c, h.logger)
	if !ok {
		return
	}

	var req dto.ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	goal, err := h.financeUseCase.ContributeToGoal(c.Request.Context(), user.ID, goalID, req.Amount)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	auditMutation(c, h.auditUseCase, authDomain.ActionDataUpdate, user, "goal", goalID.String(), true)

	c.JSON(http.StatusOK, dto.MapGoalToResponse(goal))
}

// DeleteHandler removes a goal.
// DELETE /v1/goals/:id - Requires authentication.
// Returns 204 No Content.
func (h *GoalHandler) DeleteHandler(c *gin.Context) {
	user, ok := requireUser(c, h.logger)
	if !ok {
		return
	}
	goalID, ok := parseIDParam(c, h.logger)
	if !ok {
		return
	}

	if err := h.financeUseCase.DeleteGoal(c.Request.Context(), user.ID, goalID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	auditMutation(c, h.auditUseCase, authDomain.ActionDataDelete, user, "goal", goalID.String(), true)

	c.Data(http.StatusNoContent, "application/json", nil)
}
