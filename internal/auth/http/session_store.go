package http

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/ledgerly/securecore/internal/errors"
)

// SessionSecretStore holds the per-session CSRF secrets. Secrets expire with
// the session; a missing secret simply means a new one must be generated.
type SessionSecretStore interface {
	// Get returns the secret for a session, or ("", false, nil) when absent.
	Get(ctx context.Context, sessionID string) (string, bool, error)

	// Set stores the secret for a session with a time-to-live.
	Set(ctx context.Context, sessionID, secret string, ttl time.Duration) error

	// Delete removes a session's secret.
	Delete(ctx context.Context, sessionID string) error

	// Close releases the store's resources: the in-process store stops its
	// sweeper goroutine, the Redis store closes its client.
	Close() error
}

// memorySessionStore is the in-process store for single-instance
// deployments. Multi-instance deployments must use the Redis store, or CSRF
// verification fails whenever a request lands on a different instance than
// the one that minted the token.
type memorySessionStore struct {
	secrets   sync.Map // map[string]*memorySessionEntry
	stop      chan struct{}
	closeOnce sync.Once
}

type memorySessionEntry struct {
	secret    string
	expiresAt time.Time
}

// NewMemorySessionStore creates an in-process SessionSecretStore. A sweeper
// goroutine evicts expired entries every 5 minutes until Close is called.
func NewMemorySessionStore() SessionSecretStore {
	store := &memorySessionStore{stop: make(chan struct{})}
	go store.cleanupExpired(5 * time.Minute)
	return store
}

func (s *memorySessionStore) Get(_ context.Context, sessionID string) (string, bool, error) {
	val, ok := s.secrets.Load(sessionID)
	if !ok {
		return "", false, nil
	}

	entry := val.(*memorySessionEntry)
	if time.Now().After(entry.expiresAt) {
		s.secrets.Delete(sessionID)
		return "", false, nil
	}
	return entry.secret, true, nil
}

func (s *memorySessionStore) Set(_ context.Context, sessionID, secret string, ttl time.Duration) error {
	s.secrets.Store(sessionID, &memorySessionEntry{
		secret:    secret,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.secrets.Delete(sessionID)
	return nil
}

// Close stops the sweeper goroutine. Safe to call more than once.
func (s *memorySessionStore) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	return nil
}

// cleanupExpired evicts expired entries periodically to prevent unbounded
// memory growth.
func (s *memorySessionStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := time.Now()
			s.secrets.Range(func(key, value any) bool {
				if now.After(value.(*memorySessionEntry).expiresAt) {
					s.secrets.Delete(key)
				}
				return true
			})
		}
	}
}

// redisSessionStore backs session secrets with Redis so every instance sees
// the same secret for a session.
type redisSessionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionStore creates a Redis-backed SessionSecretStore from a
// connection URL.
func NewRedisSessionStore(redisURL string) (SessionSecretStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "invalid REDIS_URL: "+err.Error())
	}

	return &redisSessionStore{
		client: redis.NewClient(opts),
		prefix: "csrf_secret:",
	}, nil
}

func (s *redisSessionStore) Get(ctx context.Context, sessionID string) (string, bool, error) {
	secret, err := s.client.Get(ctx, s.prefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, apperrors.Wrap(err, "failed to get session secret")
	}
	return secret, true, nil
}

func (s *redisSessionStore) Set(ctx context.Context, sessionID, secret string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+sessionID, secret, ttl).Err(); err != nil {
		return apperrors.Wrap(err, "failed to store session secret")
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.prefix+sessionID).Err(); err != nil {
		return apperrors.Wrap(err, "failed to delete session secret")
	}
	return nil
}

func (s *redisSessionStore) Close() error {
	return s.client.Close()
}
