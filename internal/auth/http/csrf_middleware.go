package http

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	authService "github.com/ledgerly/securecore/internal/auth/service"
	apperrors "github.com/ledgerly/securecore/internal/errors"
	"github.com/ledgerly/securecore/internal/httputil"
)

const (
	// sessionCookieName carries the signed session identifier.
	sessionCookieName = "sc_session"

	// csrfHeaderName is the header unsafe requests must present.
	csrfHeaderName = "X-CSRF-Token"

	// sessionTTL bounds both the cookie and the stored CSRF secret.
	sessionTTL = 24 * time.Hour
)

// CsrfGuard implements stateless double-submit CSRF protection. Each browser
// session gets a signed sid cookie; a per-session secret lives in the
// SessionSecretStore and derives verifiable tokens. Only derived tokens ever
// travel to the client.
type CsrfGuard struct {
	csrfService   authService.CsrfService
	store         SessionSecretStore
	signingSecret []byte
	logger        *slog.Logger
}

// NewCsrfGuard creates a CSRF guard. signingSecret is the SESSION_SECRET used
// to authenticate the sid cookie.
func NewCsrfGuard(
	csrfService authService.CsrfService,
	store SessionSecretStore,
	signingSecret string,
	logger *slog.Logger,
) *CsrfGuard {
	return &CsrfGuard{
		csrfService:   csrfService,
		store:         store,
		signingSecret: []byte(signingSecret),
		logger:        logger,
	}
}

// SessionMiddleware verifies or creates the signed session cookie and stores
// the session ID in the request context. It never rejects: a missing or
// tampered cookie is simply replaced with a fresh session.
func (g *CsrfGuard) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := g.sessionFromCookie(c)
		if !ok {
			var err error
			sessionID, err = g.newSession(c)
			if err != nil {
				httputil.HandleErrorGin(c, err, g.logger)
				c.Abort()
				return
			}
		}

		c.Request = c.Request.WithContext(WithSessionID(c.Request.Context(), sessionID))
		c.Next()
	}
}

// Middleware enforces CSRF token presence and validity on unsafe methods.
// MUST be used after SessionMiddleware.
func (g *CsrfGuard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		token := c.GetHeader(csrfHeaderName)
		if token == "" {
			httputil.HandleCSRFFailureGin(c, httputil.CSRFCodeMissing, g.logger)
			return
		}

		sessionID, ok := GetSessionID(c.Request.Context())
		if !ok {
			g.logger.Error("csrf middleware: no session in context")
			httputil.HandleCSRFFailureGin(c, httputil.CSRFCodeInvalid, g.logger)
			return
		}

		secret, found, err := g.store.Get(c.Request.Context(), sessionID)
		if err != nil {
			httputil.HandleErrorGin(c, err, g.logger)
			c.Abort()
			return
		}
		if !found || !g.csrfService.VerifyToken(secret, token) {
			g.logger.Warn("csrf token rejected",
				slog.String("session_id", sessionID),
				slog.String("path", c.Request.URL.Path))
			httputil.HandleCSRFFailureGin(c, httputil.CSRFCodeInvalid, g.logger)
			return
		}

		c.Next()
	}
}

// TokenHandler bootstraps CSRF protection for a session.
// GET /v1/csrf-token - Exempt from the CSRF check itself.
// Returns 200 OK with a freshly derived token; creates the session secret on
// first use.
func (g *CsrfGuard) TokenHandler(c *gin.Context) {
	sessionID, ok := GetSessionID(c.Request.Context())
	if !ok {
		g.logger.Error("csrf token handler: no session in context")
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, g.logger)
		return
	}

	secret, found, err := g.store.Get(c.Request.Context(), sessionID)
	if err != nil {
		httputil.HandleErrorGin(c, err, g.logger)
		return
	}
	if !found {
		secret, err = g.csrfService.GenerateSecret()
		if err != nil {
			httputil.HandleErrorGin(c, err, g.logger)
			return
		}
		if err := g.store.Set(c.Request.Context(), sessionID, secret, sessionTTL); err != nil {
			httputil.HandleErrorGin(c, err, g.logger)
			return
		}
	}

	token, err := g.csrfService.CreateToken(secret)
	if err != nil {
		httputil.HandleErrorGin(c, err, g.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"csrf_token": token})
}

// sessionFromCookie extracts and authenticates the session ID from the
// cookie. Returns ("", false) on absence or signature mismatch.
func (g *CsrfGuard) sessionFromCookie(c *gin.Context) (string, bool) {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}

	sessionID, mac, found := strings.Cut(cookie, ".")
	if !found {
		return "", false
	}
	if !hmac.Equal([]byte(g.sign(sessionID)), []byte(mac)) {
		return "", false
	}
	return sessionID, true
}

// newSession mints a random session ID and sets the signed cookie.
func (g *CsrfGuard) newSession(c *gin.Context) (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", apperrors.Wrap(err, "failed to generate session id")
	}
	sessionID := base64.URLEncoding.EncodeToString(raw)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		sessionCookieName,
		sessionID+"."+g.sign(sessionID),
		int(sessionTTL.Seconds()),
		"/",
		"",
		false,
		true,
	)
	return sessionID, nil
}

// sign computes hex(HMAC-SHA256(signingSecret, sessionID)).
func (g *CsrfGuard) sign(sessionID string) string {
	mac := hmac.New(sha256.New, g.signingSecret)
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}
