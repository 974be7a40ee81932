package usecase

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	authService "github.com/ledgerly/securecore/internal/auth/service"
	cryptoService "github.com/ledgerly/securecore/internal/crypto/service"
	apperrors "github.com/ledgerly/securecore/internal/errors"
	"github.com/ledgerly/securecore/internal/metrics"
)

const persistTimeout = 5 * time.Second

// auditUseCase persists audit events through a bounded queue drained by a
// single background worker. Request paths only ever pay the cost of a
// channel send; when the queue is full the event is dropped and counted
// rather than blocking the caller.
type auditUseCase struct {
	repo       AuditEventRepository
	signer     authService.AuditSigner
	cipher     cryptoService.FieldCipher
	signingKey []byte
	logger     *slog.Logger
	security   metrics.SecurityMetrics

	// queue is never closed. Producers can race Close, so shutdown is
	// signalled through stop instead and the worker drains what is left.
	queue   chan *authDomain.AuditEvent
	stop    chan struct{}
	done    chan struct{}
	dropped atomic.Int64
	closed  atomic.Bool
	once    sync.Once
}

// NewAuditUseCase creates an AuditUseCase and starts its worker.
func NewAuditUseCase(
	repo AuditEventRepository,
	signer authService.AuditSigner,
	cipher cryptoService.FieldCipher,
	signingKey []byte,
	logger *slog.Logger,
	security metrics.SecurityMetrics,
	queueSize int,
) AuditUseCase {
	if queueSize <= 0 {
		queueSize = 1024
	}

	u := &auditUseCase{
		repo:       repo,
		signer:     signer,
		cipher:     cipher,
		signingKey: signingKey,
		logger:     logger,
		security:   security,
		queue:      make(chan *authDomain.AuditEvent, queueSize),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go u.worker()
	return u
}

func (u *auditUseCase) LogEvent(entry *Entry) {
	if u.closed.Load() {
		u.drop(entry)
		return
	}

	actor := entry.Actor
	if actor == "" {
		actor = authDomain.AnonymousActor
	}

	event := &authDomain.AuditEvent{
		ID:         uuid.Must(uuid.NewV7()),
		Actor:      actor,
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		Details:    entry.Details,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		SessionID:  entry.SessionID,
		Success:    entry.Success,
		Severity:   authDomain.SeverityFor(entry.Action),
		CreatedAt:  time.Now().UTC(),
	}

	select {
	case u.queue <- event:
	default:
		u.drop(entry)
	}
}

func (u *auditUseCase) ListForUser(
	ctx context.Context,
	actor string,
	filter *authDomain.AuditFilter,
	offset, limit int,
) ([]*authDomain.AuditEvent, error) {
	events, err := u.repo.ListByActor(ctx, actor, filter, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}

	for _, event := range events {
		plain, err := u.cipher.Decrypt(event.Details)
		if err != nil {
			// Keep the event visible; the ciphertext marks it for review.
			u.logger.ErrorContext(ctx, "failed to decrypt audit event details",
				slog.String("event_id", event.ID.String()),
				slog.Any("error", err),
			)
			continue
		}
		event.Details = plain
	}
	return events, nil
}

func (u *auditUseCase) SecuritySummary(
	ctx context.Context,
	actor string,
	window time.Duration,
) (*authDomain.SecuritySummary, error) {
	since := time.Now().UTC().Add(-window)
	summary, err := u.repo.Summarize(ctx, actor, since)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to summarize audit events")
	}
	summary.Window = window
	return summary, nil
}

func (u *auditUseCase) VerifySignatures(ctx context.Context, offset, limit int) (int, []uuid.UUID, error) {
	events, err := u.repo.List(ctx, offset, limit)
	if err != nil {
		return 0, nil, apperrors.Wrap(err, "failed to list audit events")
	}

	var invalid []uuid.UUID
	for _, event := range events {
		if err := u.signer.Verify(u.signingKey, event); err != nil {
			invalid = append(invalid, event.ID)
		}
	}
	return len(events), invalid, nil
}

func (u *auditUseCase) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	count, err := u.repo.DeleteOlderThan(ctx, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}
	return count, nil
}

// Close stops accepting events and waits for the queue to drain, or for the
// context to expire, whichever comes first.
func (u *auditUseCase) Close(ctx context.Context) error {
	u.closed.Store(true)
	u.once.Do(func() { close(u.stop) })

	select {
	case <-u.done:
		return nil
	case <-ctx.Done():
		return apperrors.Wrap(ctx.Err(), "audit queue drain interrupted")
	}
}

// Dropped reports how many events were discarded because the queue was full
// or closed.
func (u *auditUseCase) Dropped() int64 {
	return u.dropped.Load()
}

func (u *auditUseCase) worker() {
	defer close(u.done)

	for {
		select {
		case event := <-u.queue:
			u.persist(event)
		case <-u.stop:
			// Flush events still buffered at shutdown, then exit.
			for {
				select {
				case event := <-u.queue:
					u.persist(event)
				default:
					return
				}
			}
		}
	}
}

// persist encrypts the details, signs the stored form, and appends the
// event. Failures are logged and swallowed; audit logging never propagates
// errors back into request handling.
func (u *auditUseCase) persist(event *authDomain.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if event.Details != "" {
		encrypted, err := u.cipher.Encrypt(event.Details)
		if err != nil {
			u.logger.ErrorContext(ctx, "failed to encrypt audit event details",
				slog.String("event_id", event.ID.String()),
				slog.Any("error", err),
			)
			event.Details = ""
		} else {
			event.Details = encrypted
		}
	}

	signature, err := u.signer.Sign(u.signingKey, event)
	if err != nil {
		u.logger.ErrorContext(ctx, "failed to sign audit event",
			slog.String("event_id", event.ID.String()),
			slog.Any("error", err),
		)
		return
	}
	event.Signature = signature

	if err := u.repo.Create(ctx, event); err != nil {
		u.logger.ErrorContext(ctx, "failed to persist audit event",
			slog.String("event_id", event.ID.String()),
			slog.String("action", string(event.Action)),
			slog.Any("error", err),
		)
	}
}

func (u *auditUseCase) drop(entry *Entry) {
	dropped := u.dropped.Add(1)
	u.security.RecordAuditDrop(context.Background())
	u.logger.Warn("audit event dropped",
		slog.String("action", string(entry.Action)),
		slog.Int64("total_dropped", dropped),
	)
}
