package models

import (
	"time"

	id "medtrack/pkg/domain"
)

// Session is the server-side record behind an issued bearer token. Verifying
// a token checks both the JWT signature and that this record still exists,
// so sessions can be invalidated by deleting the record before the JWT
// expires.
type Session struct {
	ID        id.SessionID
	UserID    id.UserID
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its TTL at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
