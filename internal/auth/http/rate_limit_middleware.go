package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
	"github.com/ledgerly/securecore/internal/httputil"
	"github.com/ledgerly/securecore/internal/metrics"
)

// RouteClass labels a group of routes sharing one rate limit budget.
type RouteClass string

const (
	// RouteClassAuth covers login, registration, and token refresh.
	RouteClassAuth RouteClass = "auth"

	// RouteClassReset covers password reset requests.
	RouteClassReset RouteClass = "reset"

	// RouteClassAPI covers general read traffic.
	RouteClassAPI RouteClass = "api"

	// RouteClassMutate covers writes to finance data.
	RouteClassMutate RouteClass = "mutate"

	// RouteClassReport covers aggregation endpoints.
	RouteClassReport RouteClass = "report"
)

// RateLimitBudget is a class budget: requests per window, with the full
// budget available as burst.
type RateLimitBudget struct {
	Requests int
	Window   time.Duration
}

// clientLimiterStore holds per-client-key limiters with periodic cleanup.
type clientLimiterStore struct {
	limiters sync.Map // map[string]*clientLimiterEntry
	budget   RateLimitBudget
}

type clientLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// RouteClassRateLimitMiddleware enforces a token bucket per client for one
// route class. The client key is the remote IP; auth-class routes fold in a
// user-agent fingerprint so credential stuffing from shared egress IPs burns
// the attacker's budget, not everyone's.
//
// Exceeding the budget returns 429 with Retry-After, records a HIGH audit
// event, and increments the rejection metric.
//
// The context bounds the stale-limiter sweeper; cancel it at shutdown to stop
// the goroutine.
func RouteClassRateLimitMiddleware(
	ctx context.Context,
	class RouteClass,
	budget RateLimitBudget,
	auditUseCase authUseCase.AuditUseCase,
	security metrics.SecurityMetrics,
	logger *slog.Logger,
) gin.HandlerFunc {
	store := &clientLimiterStore{budget: budget}

	// Sweep stale limiters every 5 minutes.
	go store.cleanupStale(ctx, 5*time.Minute)

	return func(c *gin.Context) {
		key := clientKey(c, class)
		limiter := store.getLimiter(key)

		if !limiter.Allow() {
			retryAfter := int(budget.Window.Seconds())

			logger.Warn("rate limit exceeded",
				slog.String("class", string(class)),
				slog.String("client_ip", c.ClientIP()),
				slog.String("path", c.Request.URL.Path))

			security.RecordRateLimitHit(c.Request.Context(), string(class))
			auditUseCase.LogEvent(&authUseCase.Entry{
				Actor:     actorFromContext(c),
				Action:    authDomain.ActionRateLimitExceeded,
				Resource:  c.Request.URL.Path,
				Details:   "rate limit exceeded for class " + string(class),
				IPAddress: c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
				SessionID: sessionFromContext(c),
				Success:   false,
			})

			httputil.HandleRateLimitGin(c, retryAfter, logger)
			return
		}

		c.Next()
	}
}

// clientKey derives the limiter key for a request. Auth routes hash in the
// user-agent; everything else keys on IP alone.
func clientKey(c *gin.Context, class RouteClass) string {
	if class != RouteClassAuth && class != RouteClassReset {
		return string(class) + ":" + c.ClientIP()
	}

	sum := sha256.Sum256([]byte(c.Request.UserAgent()))
	return string(class) + ":" + c.ClientIP() + ":" + hex.EncodeToString(sum[:8])
}

// actorFromContext returns the authenticated user ID or the anonymous actor.
func actorFromContext(c *gin.Context) string {
	if user, ok := GetUser(c.Request.Context()); ok && user != nil {
		return user.ID.String()
	}
	return authDomain.AnonymousActor
}

// sessionFromContext returns the session ID, if the session middleware ran.
func sessionFromContext(c *gin.Context) string {
	sessionID, _ := GetSessionID(c.Request.Context())
	return sessionID
}

// getLimiter retrieves or creates a rate limiter for a client key.
func (s *clientLimiterStore) getLimiter(key string) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*clientLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	// N requests per window, replenished continuously.
	rps := float64(s.budget.Requests) / s.budget.Window.Seconds()
	entry := &clientLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(rps), s.budget.Requests),
		lastAccess: time.Now(),
	}

	s.limiters.Store(key, entry)
	return entry.limiter
}

// cleanupStale removes limiters not accessed in the last hour.
func (s *clientLimiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			threshold := time.Now().Add(-1 * time.Hour)
			s.limiters.Range(func(key, value any) bool {
				entry := value.(*clientLimiterEntry)
				entry.mu.Lock()
				stale := entry.lastAccess.Before(threshold)
				entry.mu.Unlock()

				if stale {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}
