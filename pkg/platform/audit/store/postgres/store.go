package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "medtrack/pkg/domain"
	audit "medtrack/pkg/platform/audit"
	txcontext "medtrack/pkg/platform/tx"
)

// Store persists audit events. Events emitted inside a pairing transaction
// join it, so a rolled-back signup leaves no audit trace of writes that
// never happened.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := audit.Action(event.Action).Category()
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO audit_events (id, category, occurred_at, user_id, action, role, email, request_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(), string(category), event.Timestamp, uuid.UUID(event.UserID),
		event.Action, event.Role, event.Email, event.RequestID, event.Detail,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurred_at, user_id, action, role, email, request_id, detail
		FROM audit_events WHERE user_id = $1
		ORDER BY occurred_at`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e   audit.Event
			uid uuid.UUID
		)
		if err := rows.Scan(&e.Timestamp, &uid, &e.Action, &e.Role, &e.Email, &e.RequestID, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.UserID = id.UserID(uid)
		events = append(events, e)
	}
	return events, rows.Err()
}
