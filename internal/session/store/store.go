// Package store persists session records behind issued bearer tokens.
package store

import (
	"context"

	"medtrack/internal/session/models"
	id "medtrack/pkg/domain"
)

type Store interface {
	// Save persists the session until its ExpiresAt.
	Save(ctx context.Context, session *models.Session) error

	// Find returns sentinel.ErrNotFound for unknown or expired sessions.
	Find(ctx context.Context, sessionID id.SessionID) (*models.Session, error)

	// Delete removes a session; deleting an absent session is not an error.
	Delete(ctx context.Context, sessionID id.SessionID) error
}
