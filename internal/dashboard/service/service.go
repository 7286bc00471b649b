// Package service assembles the patient and caretaker dashboards. Every read
// first materializes missed days so the log window the caller sees is
// gapless up to yesterday.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	adherencemodels "medtrack/internal/adherence/models"
	"medtrack/internal/adherence/stats"
	identitymodels "medtrack/internal/identity/models"
	medicationmodels "medtrack/internal/medication/models"
	pairingmodels "medtrack/internal/pairing/models"
	platformmetrics "medtrack/internal/platform/metrics"
	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
	"medtrack/pkg/platform/sentinel"
	"medtrack/pkg/requestcontext"
)

// UserReader resolves the two names shown on every dashboard.
type UserReader interface {
	FindByID(ctx context.Context, userID id.UserID) (*identitymodels.User, error)
}

// AssignmentReader resolves the counterpart of the requesting user.
type AssignmentReader interface {
	FindByPatient(ctx context.Context, patientID id.UserID) (*pairingmodels.Assignment, error)
	FindByCaretaker(ctx context.Context, caretakerID id.UserID) (*pairingmodels.Assignment, error)
}

// AdherenceService is the log facade the dashboard drives.
type AdherenceService interface {
	BackfillMissed(ctx context.Context, patientID id.UserID, asOf adherencemodels.Day) error
	Window(ctx context.Context, patientID id.UserID, asOf adherencemodels.Day) ([]adherencemodels.MedicationLog, error)
}

// MedicationReader lists the patient's medications.
type MedicationReader interface {
	List(ctx context.Context, patientID id.UserID) ([]*medicationmodels.Medication, error)
}

// PatientDashboard is the patient's own view.
type PatientDashboard struct {
	PatientName   string
	CaretakerName string
	Summary       stats.Summary
	Logs          []adherencemodels.MedicationLog
	Medications   []*medicationmodels.Medication
}

// CaretakerDashboard is the caretaker's view of their assigned patient.
type CaretakerDashboard struct {
	CaretakerName string
	Patient       *identitymodels.User
	Summary       stats.Summary
	Logs          []adherencemodels.MedicationLog
}

type Service struct {
	users       UserReader
	assignments AssignmentReader
	adherence   AdherenceService
	medications MedicationReader
	logger      *slog.Logger
	metrics     *platformmetrics.Metrics
	tracer      trace.Tracer
}

type Option func(*Service)

func WithMetrics(m *platformmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(users UserReader, assignments AssignmentReader, adherence AdherenceService, medications MedicationReader, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:       users,
		assignments: assignments,
		adherence:   adherence,
		medications: medications,
		logger:      logger,
		tracer:      otel.Tracer("medtrack/dashboard"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForPatient builds the patient dashboard.
func (s *Service) ForPatient(ctx context.Context, patientID id.UserID) (*PatientDashboard, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.ForPatient")
	defer span.End()

	today := adherencemodels.DayOf(requestcontext.Now(ctx))
	if err := s.adherence.BackfillMissed(ctx, patientID, today); err != nil {
		return nil, err
	}

	assignment, err := s.assignments.FindByPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "patient has no caretaker")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve assignment")
	}

	dashboard := &PatientDashboard{}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		patient, err := s.findUser(groupCtx, patientID)
		if err != nil {
			return err
		}
		dashboard.PatientName = patient.Name
		return nil
	})
	group.Go(func() error {
		caretaker, err := s.findUser(groupCtx, assignment.CaretakerID)
		if err != nil {
			return err
		}
		dashboard.CaretakerName = caretaker.Name
		return nil
	})
	group.Go(func() error {
		logs, err := s.adherence.Window(groupCtx, patientID, today)
		if err != nil {
			return err
		}
		dashboard.Logs = logs
		return nil
	})
	group.Go(func() error {
		medications, err := s.medications.List(groupCtx, patientID)
		if err != nil {
			return err
		}
		dashboard.Medications = medications
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	dashboard.Summary = stats.Compute(dashboard.Logs, today)
	if s.metrics != nil {
		s.metrics.DashboardsServed.WithLabelValues(identitymodels.RolePatient.String()).Inc()
	}
	return dashboard, nil
}

// ForCaretaker builds the caretaker dashboard for their assigned patient.
// Login already requires an assignment, so a missing one here means it was
// removed since; surface it as a denial rather than a server error.
func (s *Service) ForCaretaker(ctx context.Context, caretakerID id.UserID) (*CaretakerDashboard, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.ForCaretaker")
	defer span.End()

	assignment, err := s.assignments.FindByCaretaker(ctx, caretakerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "caretaker has no assigned patient")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve assignment")
	}

	today := adherencemodels.DayOf(requestcontext.Now(ctx))
	if err := s.adherence.BackfillMissed(ctx, assignment.PatientID, today); err != nil {
		return nil, err
	}

	dashboard := &CaretakerDashboard{}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		caretaker, err := s.findUser(groupCtx, caretakerID)
		if err != nil {
			return err
		}
		dashboard.CaretakerName = caretaker.Name
		return nil
	})
	group.Go(func() error {
		patient, err := s.findUser(groupCtx, assignment.PatientID)
		if err != nil {
			return err
		}
		dashboard.Patient = patient
		return nil
	})
	group.Go(func() error {
		logs, err := s.adherence.Window(groupCtx, assignment.PatientID, today)
		if err != nil {
			return err
		}
		dashboard.Logs = logs
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	dashboard.Summary = stats.Compute(dashboard.Logs, today)
	if s.metrics != nil {
		s.metrics.DashboardsServed.WithLabelValues(identitymodels.RoleCaretaker.String()).Inc()
	}
	return dashboard, nil
}

func (s *Service) findUser(ctx context.Context, userID id.UserID) (*identitymodels.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}
