package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	"github.com/ledgerly/securecore/internal/database"
	apperrors "github.com/ledgerly/securecore/internal/errors"
)

// PostgreSQLAuditEventRepository implements AuditEvent persistence for
// PostgreSQL. Events are append-only; the only mutation is retention cleanup.
type PostgreSQLAuditEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditEventRepository creates a new PostgreSQL audit event
// repository.
func NewPostgreSQLAuditEventRepository(db *sql.DB) *PostgreSQLAuditEventRepository {
	return &PostgreSQLAuditEventRepository{db: db}
}

// Create appends an audit event.
func (p *PostgreSQLAuditEventRepository) Create(ctx context.Context, event *authDomain.AuditEvent) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO audit_events (id, actor, action, resource, resource_id, details, ip_address, user_agent, session_id, success, severity, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.Actor,
		event.Action,
		event.Resource,
		event.ResourceID,
		event.Details,
		event.IPAddress,
		event.UserAgent,
		event.SessionID,
		event.Success,
		event.Severity,
		event.Signature,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// ListByActor returns an actor's events, newest first, with optional action
// and date filtering.
func (p *PostgreSQLAuditEventRepository) ListByActor(
	ctx context.Context,
	actor string,
	filter *authDomain.AuditFilter,
	offset, limit int,
) ([]*authDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, actor, action, resource, resource_id, details, ip_address, user_agent, session_id, success, severity, signature, created_at
			  FROM audit_events WHERE actor = $1`
	args := []any{actor}

	if filter != nil {
		if filter.Action != nil {
			args = append(args, *filter.Action)
			query += ` AND action = $` + strconv.Itoa(len(args))
		}
		if filter.CreatedAtFrom != nil {
			args = append(args, *filter.CreatedAtFrom)
			query += ` AND created_at >= $` + strconv.Itoa(len(args))
		}
		if filter.CreatedAtTo != nil {
			args = append(args, *filter.CreatedAtTo)
			query += ` AND created_at <= $` + strconv.Itoa(len(args))
		}
	}

	args = append(args, limit)
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))
	args = append(args, offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer rows.Close()

	return collectAuditEvents(rows)
}

// List returns events across actors, oldest first.
func (p *PostgreSQLAuditEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*authDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, actor, action, resource, resource_id, details, ip_address, user_agent, session_id, success, severity, signature, created_at
			  FROM audit_events ORDER BY created_at ASC LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer rows.Close()

	return collectAuditEvents(rows)
}

// Summarize aggregates an actor's events since the cutoff.
func (p *PostgreSQLAuditEventRepository) Summarize(
	ctx context.Context,
	actor string,
	since time.Time,
) (*authDomain.SecuritySummary, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*),
			  	  COUNT(*) FILTER (WHERE action = $1),
			  	  COUNT(*) FILTER (WHERE severity IN ($2, $3))
			  FROM audit_events WHERE actor = $4 AND created_at >= $5`

	var summary authDomain.SecuritySummary
	err := querier.QueryRowContext(
		ctx,
		query,
		authDomain.ActionLoginFailed,
		authDomain.SeverityHigh,
		authDomain.SeverityCritical,
		actor,
		since,
	).Scan(&summary.TotalEvents, &summary.FailedLogins, &summary.HighSeverity)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to summarize audit events")
	}

	return &summary, nil
}

// DeleteOlderThan removes events created before the cutoff.
func (p *PostgreSQLAuditEventRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM audit_events WHERE created_at < $1`

	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted audit events")
	}
	return count, nil
}

func collectAuditEvents(rows *sql.Rows) ([]*authDomain.AuditEvent, error) {
	var events []*authDomain.AuditEvent
	for rows.Next() {
		var event authDomain.AuditEvent
		err := rows.Scan(
			&event.ID,
			&event.Actor,
			&event.Action,
			&event.Resource,
			&event.ResourceID,
			&event.Details,
			&event.IPAddress,
			&event.UserAgent,
			&event.SessionID,
			&event.Success,
			&event.Severity,
			&event.Signature,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}
	return events, nil
}

