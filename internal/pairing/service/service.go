// Package service owns the invariant-preserving patient signup: selecting an
// unassigned caretaker and binding the new patient to it as one atomic unit.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	identitymodels "medtrack/internal/identity/models"
	"medtrack/internal/pairing/models"
	platformmetrics "medtrack/internal/platform/metrics"
	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
	audit "medtrack/pkg/platform/audit"
	"medtrack/pkg/platform/sentinel"
	"medtrack/pkg/requestcontext"
)

// UserStore is the slice of the identity store pairing needs.
type UserStore interface {
	Create(ctx context.Context, user *identitymodels.User) error
	ListByRole(ctx context.Context, role identitymodels.Role) ([]*identitymodels.User, error)
}

// AssignmentStore persists the bijection.
type AssignmentStore interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	AssignedCaretakerIDs(ctx context.Context) ([]id.UserID, error)
}

// AuditEmitter decouples the service from the publisher implementation.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service pairs each new patient with exactly one free caretaker.
type Service struct {
	users       UserStore
	assignments AssignmentStore
	tx          StoreTx
	logger      *slog.Logger
	auditor     AuditEmitter
	metrics     *platformmetrics.Metrics
	tracer      trace.Tracer
}

// Option configures optional collaborators.
type Option func(*Service)

func WithAudit(auditor AuditEmitter) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *platformmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(users UserStore, assignments AssignmentStore, tx StoreTx, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:       users,
		assignments: assignments,
		tx:          tx,
		logger:      logger,
		tracer:      otel.Tracer("medtrack/pairing"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterPatient creates the patient's user row and binds it to some
// unassigned caretaker, all-or-nothing. The caretaker order is
// implementation-defined but deterministic per run: oldest caretaker account
// first. No fairness or load balancing is implied.
//
// Failure modes: conflict (duplicate email, or the chosen caretaker was
// concurrently bound elsewhere) and not_found (no caretaker free). On any
// failure, no rows remain.
func (s *Service) RegisterPatient(ctx context.Context, patient *identitymodels.User) (*models.Assignment, error) {
	ctx, span := s.tracer.Start(ctx, "pairing.RegisterPatient")
	defer span.End()

	if patient.Role != identitymodels.RolePatient {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "pairing requires a patient")
	}

	var assignment *models.Assignment
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		caretakerID, err := s.pickUnassignedCaretaker(txCtx)
		if err != nil {
			return err
		}

		if err := s.users.Create(txCtx, patient); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "email already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create patient")
		}

		a := &models.Assignment{
			PatientID:   patient.ID,
			CaretakerID: caretakerID,
			CreatedAt:   requestcontext.Now(txCtx),
		}
		if err := s.assignments.Create(txCtx, a); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				// Lost the race for the last free caretaker; the tx unwinds
				// the patient row.
				return dErrors.New(dErrors.CodeConflict, "caretaker assignment failed, please retry")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create assignment")
		}
		assignment = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "patient paired",
		"patient_id", assignment.PatientID.String(),
		"caretaker_id", assignment.CaretakerID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.PatientsPaired.Inc()
	}
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		UserID:    assignment.PatientID,
		Action:    string(audit.EventPatientPaired),
		Role:      identitymodels.RolePatient.String(),
		RequestID: requestcontext.RequestID(ctx),
		Detail:    "caretaker " + assignment.CaretakerID.String(),
	})
	return assignment, nil
}

func (s *Service) pickUnassignedCaretaker(ctx context.Context) (id.UserID, error) {
	caretakers, err := s.users.ListByRole(ctx, identitymodels.RoleCaretaker)
	if err != nil {
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list caretakers")
	}
	assigned, err := s.assignments.AssignedCaretakerIDs(ctx)
	if err != nil {
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assignments")
	}

	taken := make(map[id.UserID]struct{}, len(assigned))
	for _, caretakerID := range assigned {
		taken[caretakerID] = struct{}{}
	}
	for _, caretaker := range caretakers {
		if _, ok := taken[caretaker.ID]; !ok {
			return caretaker.ID, nil
		}
	}
	return id.UserID{}, dErrors.New(dErrors.CodeNotFound, "no caretaker available")
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
