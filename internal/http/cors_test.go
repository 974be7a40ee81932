package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCreateCORSMiddleware(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("DisabledReturnsNil", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(false, "https://app.ledgerly.test", logger))
	})

	t.Run("EnabledWithoutOriginsReturnsNil", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(true, "", logger))
	})

	t.Run("EnabledWithOnlyWhitespaceReturnsNil", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(true, " , ", logger))
	})

	t.Run("ParsesCommaSeparatedOrigins", func(t *testing.T) {
		middleware := createCORSMiddleware(true,
			"https://app.ledgerly.test,https://admin.ledgerly.test", logger)
		assert.NotNil(t, middleware)
	})
}

func TestParseOrigins(t *testing.T) {
	t.Run("ParsesCommaSeparated", func(t *testing.T) {
		origins := parseOrigins("https://app.ledgerly.test,https://admin.ledgerly.test")
		assert.Equal(t, []string{"https://app.ledgerly.test", "https://admin.ledgerly.test"}, origins)
	})

	t.Run("TrimsWhitespace", func(t *testing.T) {
		origins := parseOrigins(" https://app.ledgerly.test , https://admin.ledgerly.test ")
		assert.Equal(t, []string{"https://app.ledgerly.test", "https://admin.ledgerly.test"}, origins)
	})

	t.Run("HandlesEmptyString", func(t *testing.T) {
		assert.Nil(t, parseOrigins(""))
	})
}

func TestCORSIntegration(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	newRouter := func(middleware gin.HandlerFunc) *gin.Engine {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		if middleware != nil {
			router.Use(middleware)
		}
		router.POST("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		return router
	}

	t.Run("HeadersAddedWhenEnabled", func(t *testing.T) {
		router := newRouter(createCORSMiddleware(true, "https://app.ledgerly.test", logger))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("Origin", "https://app.ledgerly.test")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.ledgerly.test", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("NoHeadersWhenDisabled", func(t *testing.T) {
		router := newRouter(createCORSMiddleware(false, "https://app.ledgerly.test", logger))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("Origin", "https://app.ledgerly.test")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("PreflightAllowsCsrfHeader", func(t *testing.T) {
		router := newRouter(createCORSMiddleware(true, "https://app.ledgerly.test", logger))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "https://app.ledgerly.test")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "X-CSRF-Token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.ledgerly.test", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-CSRF-Token")
	})
}
