package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authService "github.com/ledgerly/securecore/internal/auth/service"
)

func newTestCsrfRouter(t *testing.T) (*gin.Engine, *CsrfGuard) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	store := NewMemorySessionStore()
	t.Cleanup(func() { _ = store.Close() })

	guard := NewCsrfGuard(
		authService.NewCsrfService(),
		store,
		"test-session-secret",
		slog.New(slog.DiscardHandler),
	)

	router := gin.New()
	router.Use(guard.SessionMiddleware())
	router.GET("/v1/csrf-token", guard.TokenHandler)

	protected := router.Group("", guard.Middleware())
	protected.POST("/v1/transactions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	protected.GET("/v1/transactions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router, guard
}

// bootstrapSession fetches a CSRF token and returns it with the session
// cookie.
func bootstrapSession(t *testing.T, router *gin.Engine) (string, []*http.Cookie) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/csrf-token", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response["csrf_token"])

	return response["csrf_token"], w.Result().Cookies()
}

func TestCsrfGuard_Middleware(t *testing.T) {
	t.Run("Success_ValidTokenPasses", func(t *testing.T) {
		router, _ := newTestCsrfRouter(t)
		token, cookies := bootstrapSession(t, router)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/transactions", nil)
		req.Header.Set(csrfHeaderName, token)
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Success_TokensAreReusableWithinSession", func(t *testing.T) {
		router, _ := newTestCsrfRouter(t)
		token, cookies := bootstrapSession(t, router)

		for range 3 {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/transactions", nil)
			req.Header.Set(csrfHeaderName, token)
			for _, cookie := range cookies {
				req.AddCookie(cookie)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("Success_SafeMethodBypasses", func(t *testing.T) {
		router, _ := newTestCsrfRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/transactions", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_MissingToken", func(t *testing.T) {
		router, _ := newTestCsrfRouter(t)
		_, cookies := bootstrapSession(t, router)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/transactions", nil)
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "csrf_token_missing", response["code"])
	})

	t.Run("Error_TokenFromAnotherSession", func(t *testing.T) {
		router, _ := newTestCsrfRouter(t)
		token, _ := bootstrapSession(t, router)
		_, otherCookies := bootstrapSession(t, router)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/transactions", nil)
		req.Header.Set(csrfHeaderName, token)
		for _, cookie := range otherCookies {
			req.AddCookie(cookie)
		}
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "csrf_token_invalid", response["code"])
	})

	t.Run("Error_GarbageToken", func(t *testing.T) {
		router, _ := newTestCsrfRouter(t)
		_, cookies := bootstrapSession(t, router)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/transactions", nil)
		req.Header.Set(csrfHeaderName, "not-a-token")
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCsrfGuard_SessionCookie(t *testing.T) {
	t.Run("Success_SetsSignedCookieOnFirstVisit", func(t *testing.T) {
		router, _ := newTestCsrfRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/csrf-token", nil)
		router.ServeHTTP(w, req)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, sessionCookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Contains(t, cookies[0].Value, ".")
	})

	t.Run("Success_TamperedCookieGetsFreshSession", func(t *testing.T) {
		router, _ := newTestCsrfRouter(t)
		_, cookies := bootstrapSession(t, router)
		require.Len(t, cookies, 1)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/csrf-token", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "forged." + cookies[0].Value})
		router.ServeHTTP(w, req)

		// The forged cookie is replaced, not rejected.
		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, w.Result().Cookies(), 1)
		assert.NotEqual(t, cookies[0].Value, w.Result().Cookies()[0].Value)
	})
}
