package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	"github.com/ledgerly/securecore/internal/database"
	apperrors "github.com/ledgerly/securecore/internal/errors"
)

// MySQLAuditEventRepository implements AuditEvent persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via
// database.GetTx().
type MySQLAuditEventRepository struct {
	db *sql.DB
}

// NewMySQLAuditEventRepository creates a new MySQL audit event repository.
func NewMySQLAuditEventRepository(db *sql.DB) *MySQLAuditEventRepository {
	return &MySQLAuditEventRepository{db: db}
}

// Create appends an audit event.
func (m *MySQLAuditEventRepository) Create(ctx context.Context, event *authDomain.AuditEvent) error {
	querier := database.GetTx(ctx, m.db)

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event id")
	}

	query := `INSERT INTO audit_events (id, actor, action, resource, resource_id, details, ip_address, user_agent, session_id, success, severity, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLAuditEventRepository) ListByActor(
	ctx context.Context,
	actor string,
	filter *authDomain.AuditFilter,
	offset, limit int,
) ([]*authDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, actor, action, resource, resource_id, details, ip_address, user_agent, session_id, success, severity, signature, created_at
			  FROM audit_events WHERE actor = ?`
	args := []any{actor}

	if filter != nil {
		if filter.Action != nil {
			query += ` AND action = ?`
			args = append(args, *filter.Action)
		}
		if filter.CreatedAtFrom != nil {
			query += ` AND created_at >= ?`
			args = append(args, *filter.CreatedAtFrom)
		}
		if filter.CreatedAtTo != nil {
			query += ` AND created_at <= ?`
			args = append(args, *filter.CreatedAtTo)
		}
	}

	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer rows.Close()

	return collectMySQLAuditEvents(rows)
}

// List returns events across actors, oldest first.
func (m *MySQLAuditEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*authDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, actor, action, resource, resource_id, details, ip_address, user_agent, session_id, success, severity, signature, created_at
			  FROM audit_events ORDER BY created_at ASC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer rows.Close()

	return collectMySQLAuditEvents(rows)
}

// Summarize aggregates an actor's events since the cutoff.
func (m *MySQLAuditEventRepository) Summarize(
	ctx context.Context,
	actor string,
	since time.Time,
) (*authDomain.SecuritySummary, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*),
			  	  COALESCE(SUM(CASE WHEN action = ? THEN 1 ELSE 0 END), 0),
			  	  COALESCE(SUM(CASE WHEN severity IN (?, ?) THEN 1 ELSE 0 END), 0)
			  FROM audit_events WHERE actor = ? AND created_at >= ?`

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
func (m *MySQLAuditEventRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM audit_events WHERE created_at < ?`

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

func collectMySQLAuditEvents(rows *sql.Rows) ([]*authDomain.AuditEvent, error) {
	var events []*authDomain.AuditEvent
	for rows.Next() {
		var event authDomain.AuditEvent
		var idBytes []byte
		err := rows.Scan(
			&idBytes,
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

		if event.ID, err = uuid.FromBytes(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal event id")
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}
	return events, nil
}
