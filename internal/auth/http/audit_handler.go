package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	"github.com/ledgerly/securecore/internal/auth/http/dto"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
	apperrors "github.com/ledgerly/securecore/internal/errors"
	"github.com/ledgerly/securecore/internal/httputil"
)

// defaultSummaryWindow is used when the summary request names no window.
const defaultSummaryWindow = 24 * time.Hour

// maxSummaryWindowHours bounds the trailing window a user may request.
const maxSummaryWindowHours = 24 * 30

// AuditHandler exposes a user's own audit trail: recent security events and
// an aggregate summary. Users only ever see their own events.
type AuditHandler struct {
	auditUseCase authUseCase.AuditUseCase
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler with required dependencies.
func NewAuditHandler(auditUseCase authUseCase.AuditUseCase, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		auditUseCase: auditUseCase,
		logger:       logger,
	}
}

// ListEventsHandler returns the authenticated user's audit events, newest
// first, with optional action and date filters.
// GET /v1/security/events?action=login_failed&from=2026-09-01T00:00:00Z&offset=0&limit=50
func (h *AuditHandler) ListEventsHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter, err := parseAuditFilter(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	events, err := h.auditUseCase.ListForUser(c.Request.Context(), user.ID.String(), filter, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	responses := make([]dto.AuditEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, dto.MapAuditEventToResponse(event))
	}

	c.JSON(http.StatusOK, gin.H{"events": responses, "offset": offset, "limit": limit})
}

// SummaryHandler aggregates the authenticated user's events over a trailing
// window.
// GET /v1/security/summary?hours=24
func (h *AuditHandler) SummaryHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	window := defaultSummaryWindow
	if raw := c.Query("hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours < 1 || hours > maxSummaryWindowHours {
			httputil.HandleBadRequestGin(c,
				apperrors.Wrap(apperrors.ErrInvalidInput, "hours must be between 1 and 720"),
				h.logger)
			return
		}
		window = time.Duration(hours) * time.Hour
	}

	summary, err := h.auditUseCase.SecuritySummary(c.Request.Context(), user.ID.String(), window)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecuritySummaryToResponse(summary))
}

// parseAuditFilter builds an AuditFilter from query parameters. Timestamps
// are RFC 3339.
func parseAuditFilter(c *gin.Context) (*authDomain.AuditFilter, error) {
	filter := &authDomain.AuditFilter{}

	if raw := c.Query("action"); raw != "" {
		action := authDomain.Action(raw)
		filter.Action = &action
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "from must be RFC 3339")
		}
		filter.CreatedAtFrom = &from
	}

	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "to must be RFC 3339")
		}
		filter.CreatedAtTo = &to
	}

	return filter, nil
}
