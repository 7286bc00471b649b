// Package service issues and verifies bearer sessions. A session is a JWT
// plus a server-side record; both must check out for a request to proceed.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"medtrack/internal/session/models"
	"medtrack/internal/token"
	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
	"medtrack/pkg/platform/sentinel"
	"medtrack/pkg/requestcontext"
)

// DefaultTTL bounds how long an issued session stays valid.
const DefaultTTL = 24 * time.Hour

// Store is the session persistence the service needs.
type Store interface {
	Save(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
}

type Service struct {
	sessions Store
	tokens   *token.JWTService
	ttl      time.Duration
	logger   *slog.Logger
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

func NewService(sessions Store, tokens *token.JWTService, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		tokens:   tokens,
		ttl:      DefaultTTL,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a session record for the user and returns the signed token
// carrying it.
func (s *Service) Issue(ctx context.Context, userID id.UserID, role string) (string, *models.Session, error) {
	now := requestcontext.Now(ctx)
	session := &models.Session{
		ID:        id.NewSessionID(),
		UserID:    userID,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}

	signed, err := s.tokens.Generate(userID, session.ID, role, now, s.ttl)
	if err != nil {
		// Best effort; the record expires on its own either way.
		_ = s.sessions.Delete(ctx, session.ID)
		return "", nil, err
	}
	return signed, session, nil
}

// Verify validates the token signature and confirms the session record still
// exists and has not expired.
func (s *Service) Verify(ctx context.Context, tokenString string) (*models.Session, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}

	session, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up session")
	}
	if session.Expired(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired")
	}
	return session, nil
}

// Revoke deletes the session record, invalidating outstanding tokens for it.
func (s *Service) Revoke(ctx context.Context, sessionID id.SessionID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
	}
	s.logger.InfoContext(ctx, "session revoked", "session_id", sessionID.String())
	return nil
}
