package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
)

// minUserAgentLength is the shortest user-agent string treated as plausible.
const minUserAgentLength = 10

// maxForwardedForHops bounds the X-Forwarded-For chain before a request is
// flagged.
const maxForwardedForHops = 5

// botUserAgentMarkers are case-insensitive substrings of automated clients.
var botUserAgentMarkers = []string{"bot", "crawler", "spider", "curl", "python-requests", "scrapy"}

// SuspiciousActivityMiddleware flags requests with bot-like traits. Advisory
// only: it records an audit event and always lets the request through. The
// rate limiter is the enforcement layer.
func SuspiciousActivityMiddleware(
	auditUseCase authUseCase.AuditUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if reason, ok := suspicionReason(c); ok {
			logger.Debug("suspicious request",
				slog.String("reason", reason),
				slog.String("client_ip", c.ClientIP()),
				slog.String("path", c.Request.URL.Path))

			auditUseCase.LogEvent(&authUseCase.Entry{
				Actor:     actorFromContext(c),
				Action:    authDomain.ActionSuspiciousActivity,
				Resource:  c.Request.URL.Path,
				Details:   reason,
				IPAddress: c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
				SessionID: sessionFromContext(c),
				Success:   false,
			})
		}

		c.Next()
	}
}

// suspicionReason applies the heuristics and returns the first match.
func suspicionReason(c *gin.Context) (string, bool) {
	userAgent := c.Request.UserAgent()

	if userAgent == "" {
		return "missing user-agent", true
	}
	if len(userAgent) < minUserAgentLength {
		return "implausibly short user-agent", true
	}

	lower := strings.ToLower(userAgent)
	for _, marker := range botUserAgentMarkers {
		if strings.Contains(lower, marker) {
			return "bot-like user-agent: " + marker, true
		}
	}

	forwarded := c.GetHeader("X-Forwarded-For")
	if forwarded != "" && len(strings.Split(forwarded, ",")) > maxForwardedForHops {
		return "x-forwarded-for chain too long", true
	}

	return "", false
}
