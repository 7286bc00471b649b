// Package service implements signup and credential checks. Patient signup is
// delegated to the pairing service so the user row and the assignment commit
// together; caretaker signup is a plain insert.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"medtrack/internal/identity/models"
	"medtrack/internal/identity/secrets"
	pairingmodels "medtrack/internal/pairing/models"
	platformmetrics "medtrack/internal/platform/metrics"
	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
	"medtrack/pkg/email"
	audit "medtrack/pkg/platform/audit"
	"medtrack/pkg/platform/sentinel"
	"medtrack/pkg/requestcontext"
)

// UserStore is the identity persistence the service needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error)
}

// PatientRegistrar creates a patient together with their caretaker
// assignment in one transactional unit. The pairing service implements it.
type PatientRegistrar interface {
	RegisterPatient(ctx context.Context, patient *models.User) (*pairingmodels.Assignment, error)
}

// AssignmentReader gates caretaker login on having an assigned patient.
type AssignmentReader interface {
	FindByCaretaker(ctx context.Context, caretakerID id.UserID) (*pairingmodels.Assignment, error)
}

type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	users       UserStore
	registrar   PatientRegistrar
	assignments AssignmentReader
	logger      *slog.Logger
	auditor     AuditEmitter
	metrics     *platformmetrics.Metrics
}

type Option func(*Service)

func WithAudit(auditor AuditEmitter) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *platformmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(users UserStore, registrar PatientRegistrar, assignments AssignmentReader, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:       users,
		registrar:   registrar,
		assignments: assignments,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignupInput carries the raw signup request fields.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     string
}

// Signup creates a user. A patient signup also claims a free caretaker; when
// none is available the whole signup is rejected and nothing is persisted.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	role, err := models.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		input.Name = email.DisplayName(input.Email)
	}

	hash, err := secrets.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user, err := models.NewUser(id.NewUserID(), input.Name, input.Email, hash, input.Phone, role, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	switch role {
	case models.RolePatient:
		if _, err := s.registrar.RegisterPatient(ctx, user); err != nil {
			return nil, err
		}
	case models.RoleCaretaker:
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
		}
	}

	s.logger.InfoContext(ctx, "user created",
		"user_id", user.ID.String(),
		"role", user.Role.String(),
	)
	if s.metrics != nil {
		s.metrics.UsersCreated.WithLabelValues(user.Role.String()).Inc()
	}
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		UserID:    user.ID,
		Action:    string(audit.EventUserCreated),
		Role:      user.Role.String(),
		Email:     user.Email,
		RequestID: requestcontext.RequestID(ctx),
	})
	return user, nil
}

// Authenticate checks credentials for the given role. Wrong email, wrong
// role and wrong password are indistinguishable to the caller. A caretaker
// without an assigned patient authenticates correctly but is still denied.
func (s *Service) Authenticate(ctx context.Context, email, password, roleInput string) (*models.User, error) {
	role, err := models.ParseRole(roleInput)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordLogin(ctx, id.UserID{}, role, email, false, "unknown user")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if err := secrets.Verify(password, user.PasswordHash); err != nil {
		s.recordLogin(ctx, user.ID, role, user.Email, false, "bad password")
		return nil, err
	}

	if role == models.RoleCaretaker {
		if _, err := s.assignments.FindByCaretaker(ctx, user.ID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				s.recordLogin(ctx, user.ID, role, user.Email, false, "no assigned patient")
				return nil, dErrors.New(dErrors.CodeForbidden, "caretaker has no assigned patient")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check assignment")
		}
	}

	s.recordLogin(ctx, user.ID, role, user.Email, true, "")
	return user, nil
}

func (s *Service) recordLogin(ctx context.Context, userID id.UserID, role models.Role, email string, ok bool, reason string) {
	outcome := "denied"
	action := audit.EventLoginDenied
	if ok {
		outcome = "succeeded"
		action = audit.EventLoginSucceeded
	}
	s.logger.InfoContext(ctx, "login attempt",
		"role", role.String(),
		"outcome", outcome,
		"reason", reason,
	)
	if s.metrics != nil {
		s.metrics.Logins.WithLabelValues(outcome).Inc()
	}
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		UserID:    userID,
		Action:    string(action),
		Role:      role.String(),
		Email:     email,
		RequestID: requestcontext.RequestID(ctx),
		Detail:    reason,
	})
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
