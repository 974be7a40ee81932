// Package integration provides end-to-end tests for the API against a real
// PostgreSQL database. The tests run only when TEST_POSTGRES_DSN points at a
// disposable database; migrations are applied on setup and rolled back on
// teardown.
package integration

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerly/securecore/internal/app"
	"github.com/ledgerly/securecore/internal/config"
)

// testContext holds all dependencies and state for integration testing.
type testContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	client    *http.Client
	migrate   *migrate.Migrate

	csrfToken   string
	accessToken string
}

func setupIntegrationTest(t *testing.T) *testContext {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set, skipping integration test")
	}

	gin.SetMode(gin.TestMode)

	m, err := migrate.New("file://../../migrations/postgres", dsn)
	require.NoError(t, err, "failed to create migrate instance")
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err, "failed to apply migrations")
	}

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)

	cfg := &config.Config{
		DBDriver:             "postgres",
		DBConnectionString:   dsn,
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    time.Hour,
		ServerHost:           "localhost",
		ServerPort:           8080,
		LogLevel:             "error",
		EncryptionKeyHex:     hex.EncodeToString(key),
		JWTAccessSecret:      "integration-access-secret",
		JWTRefreshSecret:     "integration-refresh-secret",
		SessionSecret:        "integration-session-secret",
		AccessTokenTTL:       time.Hour,
		RefreshTokenTTL:      24 * time.Hour,
		ResetTokenTTL:        10 * time.Minute,
		MaxRefreshTokens:     5,
		PasswordHasher:       "bcrypt",
		BcryptCost:           10,
		AuditQueueSize:       64,
	}
	require.NoError(t, cfg.Validate())

	container := app.NewContainer(cfg)

	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	server := httptest.NewServer(httpSrv.GetHandler())

	db, err := container.DB()
	require.NoError(t, err)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testContext{
		container: container,
		db:        db,
		server:    server,
		client:    &http.Client{Jar: jar, Timeout: 10 * time.Second},
		migrate:   m,
	}
}

func teardownIntegrationTest(t *testing.T, ctx *testContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}
	if ctx.container != nil {
		if err := ctx.container.Shutdown(context.Background()); err != nil {
			t.Logf("container shutdown error: %v", err)
		}
	}
	if ctx.migrate != nil {
		if err := ctx.migrate.Down(); err != nil {
			t.Logf("migrate down error: %v", err)
		}
		ctx.migrate.Close()
	}
}

// request performs an HTTP request through the shared cookie-jar client,
// attaching the CSRF and bearer tokens when present.
func (ctx *testContext) request(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ctx.csrfToken != "" {
		req.Header.Set("X-CSRF-Token", ctx.csrfToken)
	}
	if ctx.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+ctx.accessToken)
	}

	resp, err := ctx.client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.NoError(t, resp.Body.Close())

	return resp, respBody
}

func decodeJSON(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var result map[string]any
	require.NoError(t, json.Unmarshal(body, &result), "failed to decode response: %s", body)
	return result
}

func TestIntegration_API(t *testing.T) {
	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	email := fmt.Sprintf("alice+%d@example.com", time.Now().UnixNano())
	password := "correct horse battery staple 9!"

	t.Run("health", func(t *testing.T) {
		resp, _ := ctx.request(t, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = ctx.request(t, http.MethodGet, "/ready", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("csrf-bootstrap", func(t *testing.T) {
		resp, body := ctx.request(t, http.MethodGet, "/v1/csrf-token", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := decodeJSON(t, body)
		token, _ := result["csrf_token"].(string)
		require.NotEmpty(t, token)
		ctx.csrfToken = token
	})

	t.Run("register-requires-csrf", func(t *testing.T) {
		saved := ctx.csrfToken
		ctx.csrfToken = ""
		resp, body := ctx.request(t, http.MethodPost, "/v1/auth/register", map[string]string{
			"name": "Alice", "email": email, "password": password,
		})
		ctx.csrfToken = saved

		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Contains(t, string(body), "csrf_token_missing")
	})

	t.Run("register-and-login", func(t *testing.T) {
		resp, body := ctx.request(t, http.MethodPost, "/v1/auth/register", map[string]string{
			"name": "Alice", "email": email, "password": password,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, "register failed: %s", body)

		resp, body = ctx.request(t, http.MethodPost, "/v1/auth/login", map[string]string{
			"email": email, "password": password,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, "login failed: %s", body)

		result := decodeJSON(t, body)
		tokens, ok := result["tokens"].(map[string]any)
		require.True(t, ok)
		accessToken, _ := tokens["access_token"].(string)
		require.NotEmpty(t, accessToken)
		ctx.accessToken = accessToken
	})

	t.Run("login-wrong-password-is-generic", func(t *testing.T) {
		saved := ctx.accessToken
		ctx.accessToken = ""
		resp, body := ctx.request(t, http.MethodPost, "/v1/auth/login", map[string]string{
			"email": email, "password": "not the password 1!",
		})
		ctx.accessToken = saved

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, string(body), "Invalid credentials")
	})

	t.Run("me", func(t *testing.T) {
		resp, body := ctx.request(t, http.MethodGet, "/v1/auth/me", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := decodeJSON(t, body)
		assert.Equal(t, email, result["email"])
		assert.Equal(t, "Alice", result["name"])
	})

	t.Run("transactions-roundtrip", func(t *testing.T) {
		resp, body := ctx.request(t, http.MethodPost, "/v1/transactions", map[string]any{
			"type":        "expense",
			"amount":      42.50,
			"category":    "groceries",
			"description": "Weekly shop",
			"occurred_at": time.Now().UTC().Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, "create failed: %s", body)

		created := decodeJSON(t, body)
		assert.Equal(t, 42.50, created["amount"])

		resp, body = ctx.request(t, http.MethodGet, "/v1/transactions", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		list := decodeJSON(t, body)
		transactions, ok := list["transactions"].([]any)
		require.True(t, ok)
		require.Len(t, transactions, 1)
	})

	t.Run("amounts-encrypted-at-rest", func(t *testing.T) {
		var storedAmount, storedDescription string
		err := ctx.db.QueryRow(`SELECT amount, description FROM transactions LIMIT 1`).
			Scan(&storedAmount, &storedDescription)
		require.NoError(t, err)

		assert.NotContains(t, storedAmount, "42.5")
		assert.NotContains(t, storedDescription, "Weekly shop")
	})

	t.Run("budget-report", func(t *testing.T) {
		month := time.Now().UTC().Format("2006-01")

		resp, body := ctx.request(t, http.MethodPost, "/v1/budgets", map[string]any{
			"category": "groceries", "limit": 500.0, "month": month,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, "create failed: %s", body)

		// Same category and month again conflicts.
		resp, _ = ctx.request(t, http.MethodPost, "/v1/budgets", map[string]any{
			"category": "groceries", "limit": 300.0, "month": month,
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		resp, body = ctx.request(t, http.MethodGet, "/v1/budgets/report?month="+month, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		report := decodeJSON(t, body)
		budgets, ok := report["budgets"].([]any)
		require.True(t, ok)
		require.Len(t, budgets, 1)
		status := budgets[0].(map[string]any)
		assert.Equal(t, 42.50, status["spent"])
		assert.Equal(t, false, status["exceeded"])
	})

	t.Run("goal-contribution", func(t *testing.T) {
		resp, body := ctx.request(t, http.MethodPost, "/v1/goals", map[string]any{
			"name": "Emergency fund", "target_amount": 3000.0,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, "create failed: %s", body)
		goalID := decodeJSON(t, body)["id"].(string)

		resp, body = ctx.request(t, http.MethodPost, "/v1/goals/"+goalID+"/contribute", map[string]any{
			"amount": 750.0,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		goal := decodeJSON(t, body)
		assert.Equal(t, 750.0, goal["current_amount"])
		assert.Equal(t, 0.25, goal["progress"])
	})

	t.Run("audit-trail", func(t *testing.T) {
		// Audit persistence is asynchronous; wait for the login events to land.
		require.Eventually(t, func() bool {
			resp, body := ctx.request(t, http.MethodGet, "/v1/audit/events", nil)
			if resp.StatusCode != http.StatusOK {
				return false
			}
			events, ok := decodeJSON(t, body)["events"].([]any)
			return ok && len(events) > 0
		}, 5*time.Second, 100*time.Millisecond, "no audit events recorded")
	})

	t.Run("refresh-rotation", func(t *testing.T) {
		resp, body := ctx.request(t, http.MethodPost, "/v1/auth/login", map[string]string{
			"email": email, "password": password,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		tokens := decodeJSON(t, body)["tokens"].(map[string]any)
		refreshToken := tokens["refresh_token"].(string)

		resp, body = ctx.request(t, http.MethodPost, "/v1/auth/refresh", map[string]string{
			"refresh_token": refreshToken,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, "refresh failed: %s", body)

		// Replaying the rotated-out token fails.
		resp, _ = ctx.request(t, http.MethodPost, "/v1/auth/refresh", map[string]string{
			"refresh_token": refreshToken,
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
