package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
	apperrors "github.com/ledgerly/securecore/internal/errors"
	"github.com/ledgerly/securecore/internal/httputil"
)

// AuthenticationMiddleware authenticates requests via Bearer access token.
//
// The middleware extracts the token from the Authorization header
// (case-insensitive "bearer" prefix), validates it through
// CredentialUseCase.Authenticate, and stores the user in the request context
// for downstream handlers via GetUser().
//
// Failures are uniform 401s; an audit event is recorded for rejected tokens
// so repeated probing is visible.
func AuthenticationMiddleware(
	credentialUseCase authUseCase.CredentialUseCase,
	auditUseCase authUseCase.AuditUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		accessToken := authHeader[len(bearerPrefix):]
		if accessToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		user, err := credentialUseCase.Authenticate(c.Request.Context(), accessToken)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))

			auditUseCase.LogEvent(&authUseCase.Entry{
				Actor:     authDomain.AnonymousActor,
				Action:    authDomain.ActionUnauthorizedAccess,
				Resource:  c.Request.URL.Path,
				Details:   "access token rejected",
				IPAddress: c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
				SessionID: sessionFromContext(c),
				Success:   false,
			})

			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithUser(c.Request.Context(), user)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
