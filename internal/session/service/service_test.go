package service_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"medtrack/internal/session/service"
	"medtrack/internal/session/store"
	"medtrack/internal/token"
	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
	"medtrack/pkg/requestcontext"
)

type SessionServiceSuite struct {
	suite.Suite
	service *service.Service
	userID  id.UserID
	now     time.Time
	ctx     context.Context
}

func (s *SessionServiceSuite) SetupTest() {
	tokens := token.NewJWTService("test-signing-key", "medtrack", "medtrack-api")
	s.service = service.NewService(store.NewInMemory(), tokens, slog.New(slog.DiscardHandler))
	s.userID = id.NewUserID()
	s.now = time.Now().UTC()
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *SessionServiceSuite) TestIssueAndVerify() {
	signed, issued, err := s.service.Issue(s.ctx, s.userID, "patient")
	s.Require().NoError(err)
	s.NotEmpty(signed)

	session, err := s.service.Verify(s.ctx, signed)
	s.Require().NoError(err)
	s.Equal(issued.ID, session.ID)
	s.Equal(s.userID, session.UserID)
	s.Equal("patient", session.Role)
}

func (s *SessionServiceSuite) TestVerifyGarbageToken() {
	_, err := s.service.Verify(s.ctx, "not.a.token")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *SessionServiceSuite) TestVerifyWrongKey() {
	other := service.NewService(
		store.NewInMemory(),
		token.NewJWTService("other-key", "medtrack", "medtrack-api"),
		slog.New(slog.DiscardHandler),
	)
	signed, _, err := other.Issue(s.ctx, s.userID, "patient")
	s.Require().NoError(err)

	_, err = s.service.Verify(s.ctx, signed)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *SessionServiceSuite) TestRevokedSessionRejected() {
	signed, issued, err := s.service.Issue(s.ctx, s.userID, "patient")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Revoke(s.ctx, issued.ID))

	_, err = s.service.Verify(s.ctx, signed)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *SessionServiceSuite) TestExpiredSessionRejected() {
	short := service.NewService(
		store.NewInMemory(),
		token.NewJWTService("test-signing-key", "medtrack", "medtrack-api"),
		slog.New(slog.DiscardHandler),
		service.WithTTL(time.Minute),
	)
	signed, _, err := short.Issue(s.ctx, s.userID, "patient")
	s.Require().NoError(err)

	later := requestcontext.WithTime(context.Background(), s.now.Add(2*time.Minute))
	_, err = short.Verify(later, signed)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestSessionServiceSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceSuite))
}
