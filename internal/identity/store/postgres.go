package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"medtrack/internal/identity/models"
	"medtrack/internal/platform/postgres"
	id "medtrack/pkg/domain"
	"medtrack/pkg/platform/sentinel"
	txcontext "medtrack/pkg/platform/tx"
)

// Postgres persists users. When a transaction is carried in the context
// (patient signup), all statements join it.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, user *models.User) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, phone, role, created_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7)`,
		uuid.UUID(user.ID), user.Name, user.Email, user.PasswordHash,
		user.Phone, string(user.Role), user.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, phone, role, created_at
		FROM users WHERE id = $1`, uuid.UUID(userID))
	return scanUser(row)
}

func (s *Postgres) FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, phone, role, created_at
		FROM users WHERE email = lower($1) AND role = $2`, email, string(role))
	return scanUser(row)
}

func (s *Postgres) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, name, email, password_hash, phone, role, created_at
		FROM users WHERE role = $1
		ORDER BY created_at, id`, string(role))
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var (
			u   models.User
			uid uuid.UUID
		)
		if err := rows.Scan(&uid, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.ID = id.UserID(uid)
		users = append(users, &u)
	}
	return users, rows.Err()
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u   models.User
		uid uuid.UUID
	)
	err := row.Scan(&uid, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(uid)
	return &u, nil
}
