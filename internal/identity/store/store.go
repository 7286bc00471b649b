// Package store persists user records. Implementations return
// pkg/platform/sentinel errors; services translate them into coded domain
// errors.
package store

import (
	"context"

	"medtrack/internal/identity/models"
	id "medtrack/pkg/domain"
)

type Store interface {
	// Create inserts a new user. Returns sentinel.ErrConflict when the email
	// is already taken (case-insensitive).
	Create(ctx context.Context, user *models.User) error

	// FindByID returns sentinel.ErrNotFound when no such user exists.
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)

	// FindByEmailAndRole looks a user up by normalized email and role.
	// Returns sentinel.ErrNotFound when no user matches both.
	FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error)

	// ListByRole returns all users with the given role ordered by
	// (CreatedAt, ID). The order is what makes caretaker selection
	// deterministic per run.
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
}
