// Package service manages a patient's medication list.
package service

import (
	"context"
	"errors"
	"log/slog"

	"medtrack/internal/medication/models"
	platformmetrics "medtrack/internal/platform/metrics"
	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
	audit "medtrack/pkg/platform/audit"
	"medtrack/pkg/platform/sentinel"
	"medtrack/pkg/requestcontext"
)

// Store is the persistence the service needs.
type Store interface {
	CreateIfNameAvailable(ctx context.Context, medication *models.Medication) error
	ListByPatient(ctx context.Context, patientID id.UserID) ([]*models.Medication, error)
}

type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	medications Store
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

func NewService(medications Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{medications: medications, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers a medication for the patient. Names are unique per patient,
// compared case-insensitively; a duplicate is rejected as a conflict.
func (s *Service) Add(ctx context.Context, patientID id.UserID, name, dosage, frequency string) (*models.Medication, error) {
	medication, err := models.NewMedication(id.NewMedicationID(), patientID, name, dosage, frequency, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.medications.CreateIfNameAvailable(ctx, medication); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "medication already exists for this patient")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create medication")
	}

	s.logger.InfoContext(ctx, "medication added",
		"patient_id", patientID.String(),
		"medication_id", medication.ID.String(),
	)
	if s.metrics != nil {
		s.metrics.MedicationsAdded.Inc()
	}
	if s.auditor != nil {
		event := audit.Event{
			Timestamp: requestcontext.Now(ctx),
			UserID:    patientID,
			Action:    string(audit.EventMedicationAdded),
			RequestID: requestcontext.RequestID(ctx),
			Detail:    medication.Name,
		}
		if err := s.auditor.Emit(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
		}
	}
	return medication, nil
}

// List returns the patient's medications ordered by creation.
func (s *Service) List(ctx context.Context, patientID id.UserID) ([]*models.Medication, error) {
	medications, err := s.medications.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list medications")
	}
	return medications, nil
}
