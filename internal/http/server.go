// Package http provides the API server: routing, per-class rate limits,
// CSRF enforcement, and health endpoints.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	otelmetric "go.opentelemetry.io/otel/metric"

	authHTTP "github.com/ledgerly/securecore/internal/auth/http"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
	"github.com/ledgerly/securecore/internal/config"
	financeHTTP "github.com/ledgerly/securecore/internal/finance/http"
	"github.com/ledgerly/securecore/internal/metrics"
)

// Server represents the API HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. Routes are registered separately via
// SetupRouter.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterDeps carries everything route registration needs.
type RouterDeps struct {
	Config             *config.Config
	AuthHandler        *authHTTP.AuthHandler
	AuditHandler       *authHTTP.AuditHandler
	TransactionHandler *financeHTTP.TransactionHandler
	BudgetHandler      *financeHTTP.BudgetHandler
	GoalHandler        *financeHTTP.GoalHandler
	CsrfGuard          *authHTTP.CsrfGuard
	CredentialUseCase  authUseCase.CredentialUseCase
	AuditUseCase       authUseCase.AuditUseCase
	SecurityMetrics    metrics.SecurityMetrics

	// MeterProvider enables the HTTP metrics middleware when set.
	MeterProvider otelmetric.MeterProvider
}

// SetupRouter builds the gin router and registers every route with its
// middleware chain. Route classes get separate rate limit budgets; mutating
// routes additionally pass the CSRF guard. The context scopes the rate limit
// sweeper goroutines to the application lifetime.
func (s *Server) SetupRouter(ctx context.Context, deps *RouterDeps) {
	cfg := deps.Config

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if deps.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(deps.MeterProvider, cfg.MetricsNamespace))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.Use(deps.CsrfGuard.SessionMiddleware())
	router.Use(authHTTP.SuspiciousActivityMiddleware(deps.AuditUseCase, s.logger))

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	rateLimit := func(class authHTTP.RouteClass, requests int, window time.Duration) gin.HandlerFunc {
		if !cfg.RateLimitEnabled {
			return func(c *gin.Context) { c.Next() }
		}
		return authHTTP.RouteClassRateLimitMiddleware(
			ctx,
			class,
			authHTTP.RateLimitBudget{Requests: requests, Window: window},
			deps.AuditUseCase,
			deps.SecurityMetrics,
			s.logger,
		)
	}

	authLimit := rateLimit(authHTTP.RouteClassAuth, cfg.RateLimitAuthRequests, cfg.RateLimitAuthWindow)
	resetLimit := rateLimit(authHTTP.RouteClassReset, cfg.RateLimitResetRequests, cfg.RateLimitResetWindow)
	apiLimit := rateLimit(authHTTP.RouteClassAPI, cfg.RateLimitAPIRequests, cfg.RateLimitAPIWindow)
	mutateLimit := rateLimit(authHTTP.RouteClassMutate, cfg.RateLimitMutateRequests, cfg.RateLimitMutateWindow)
	reportLimit := rateLimit(authHTTP.RouteClassReport, cfg.RateLimitReportRequests, cfg.RateLimitReportWindow)

	authenticated := authHTTP.AuthenticationMiddleware(deps.CredentialUseCase, deps.AuditUseCase, s.logger)
	csrf := deps.CsrfGuard.Middleware()

	v1 := router.Group("/v1")
	{
		v1.GET("/csrf-token", apiLimit, deps.CsrfGuard.TokenHandler)

		auth := v1.Group("/auth")
		{
			auth.POST("/register", authLimit, csrf, deps.AuthHandler.RegisterHandler)
			auth.POST("/login", authLimit, csrf, deps.AuthHandler.LoginHandler)
			auth.POST("/refresh", authLimit, csrf, deps.AuthHandler.RefreshHandler)
			auth.POST("/forgot-password", resetLimit, csrf, deps.AuthHandler.ForgotPasswordHandler)
			auth.POST("/reset-password", resetLimit, csrf, deps.AuthHandler.ResetPasswordHandler)

			auth.GET("/me", apiLimit, authenticated, deps.AuthHandler.MeHandler)
			auth.POST("/logout", mutateLimit, csrf, authenticated, deps.AuthHandler.LogoutHandler)
			auth.POST("/change-password", mutateLimit, csrf, authenticated, deps.AuthHandler.ChangePasswordHandler)
		}

		audit := v1.Group("/audit", apiLimit, authenticated)
		{
			audit.GET("/events", deps.AuditHandler.ListEventsHandler)
			audit.GET("/summary", deps.AuditHandler.SummaryHandler)
		}

		transactions := v1.Group("/transactions", authenticated)
		{
			transactions.GET("", apiLimit, deps.TransactionHandler.ListHandler)
			transactions.GET("/:id", apiLimit, deps.TransactionHandler.GetHandler)
			transactions.POST("", mutateLimit, csrf, deps.TransactionHandler.CreateHandler)
			transactions.PUT("/:id", mutateLimit, csrf, deps.TransactionHandler.UpdateHandler)
			transactions.DELETE("/:id", mutateLimit, csrf, deps.TransactionHandler.DeleteHandler)
		}

		budgets := v1.Group("/budgets", authenticated)
		{
			budgets.GET("/report", reportLimit, deps.BudgetHandler.ReportHandler)
			budgets.POST("", mutateLimit, csrf, deps.BudgetHandler.CreateHandler)
			budgets.PUT("/:id", mutateLimit, csrf, deps.BudgetHandler.UpdateHandler)
			budgets.DELETE("/:id", mutateLimit, csrf, deps.BudgetHandler.DeleteHandler)
		}

		goals := v1.Group("/goals", authenticated)
		{
			goals.GET("", apiLimit, deps.GoalHandler.ListHandler)
			goals.POST("", mutateLimit, csrf, deps.GoalHandler.CreateHandler)
			goals.POST("/:id/contribute", mutateLimit, csrf, deps.GoalHandler.ContributeHandler)
			goals.DELETE("/:id", mutateLimit, csrf, deps.GoalHandler.DeleteHandler)
		}
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic, checking
// database connectivity.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	ready := true
	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			components["database"] = "error"
			ready = false
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// Start starts the HTTP server. SetupRouter must have been called first.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
