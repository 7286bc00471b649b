// Package service owns medication-log writes: the explicit "taken" mark for
// today and the backfill that materializes missed rows for past days.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"medtrack/internal/adherence/models"
	platformmetrics "medtrack/internal/platform/metrics"
	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
	audit "medtrack/pkg/platform/audit"
	"medtrack/pkg/requestcontext"
)

// DefaultWindowDays is how many days strictly before today backfill covers.
// Together with today that makes the 30-day dashboard window.
const DefaultWindowDays = 29

// Store is the log persistence the service needs.
type Store interface {
	UpsertStatus(ctx context.Context, entry *models.MedicationLog) error
	InsertMissedIfAbsent(ctx context.Context, patientID id.UserID, days []models.Day) (int, error)
	ListRange(ctx context.Context, patientID id.UserID, from, to models.Day) ([]models.MedicationLog, error)
}

// AuditEmitter decouples the service from the publisher implementation.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	logs       Store
	windowDays int
	logger     *slog.Logger
	auditor    AuditEmitter
	metrics    *platformmetrics.Metrics
}

type Option func(*Service)

func WithWindowDays(days int) Option {
	return func(s *Service) { s.windowDays = days }
}

func WithAudit(auditor AuditEmitter) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *platformmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(logs Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		logs:       logs,
		windowDays: DefaultWindowDays,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BackfillMissed inserts a missed row for every day in the trailing window
// (offsets 1..windowDays before asOf) that has no entry. Today itself is
// never backfilled: its absence is reported as "not marked", not persisted.
// Idempotent and safe to call on every dashboard read.
func (s *Service) BackfillMissed(ctx context.Context, patientID id.UserID, asOf models.Day) error {
	days := make([]models.Day, 0, s.windowDays)
	for offset := 1; offset <= s.windowDays; offset++ {
		days = append(days, asOf.AddDays(-offset))
	}

	inserted, err := s.logs.InsertMissedIfAbsent(ctx, patientID, days)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to backfill missed logs")
	}
	if inserted == 0 {
		return nil
	}

	s.logger.DebugContext(ctx, "backfilled missed logs",
		"patient_id", patientID.String(),
		"days", inserted,
	)
	if s.metrics != nil {
		s.metrics.DaysBackfilled.Add(float64(inserted))
	}
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		UserID:    patientID,
		Action:    string(audit.EventBackfillCompleted),
		RequestID: requestcontext.RequestID(ctx),
		Detail:    fmt.Sprintf("%d missed days materialized", inserted),
	})
	return nil
}

// MarkTakenToday upserts today's entry to taken. Replace-on-conflict makes
// the mark win over an earlier missed row for the same day regardless of
// which write landed first; the reverse never happens because backfill skips
// today.
func (s *Service) MarkTakenToday(ctx context.Context, patientID id.UserID) (models.Day, error) {
	today := models.DayOf(requestcontext.Now(ctx))
	entry := &models.MedicationLog{
		ID:        id.NewLogID(),
		PatientID: patientID,
		Day:       today,
		Status:    models.StatusTaken,
	}
	if err := s.logs.UpsertStatus(ctx, entry); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark dose taken")
	}

	if s.metrics != nil {
		s.metrics.DosesMarked.Inc()
	}
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		UserID:    patientID,
		Action:    string(audit.EventDoseMarked),
		RequestID: requestcontext.RequestID(ctx),
		Detail:    today.String(),
	})
	return today, nil
}

// Window returns the trailing 30-day log window ending at asOf (inclusive),
// ordered by day ascending, which is the input shape the stats engine expects.
func (s *Service) Window(ctx context.Context, patientID id.UserID, asOf models.Day) ([]models.MedicationLog, error) {
	entries, err := s.logs.ListRange(ctx, patientID, asOf.AddDays(-s.windowDays), asOf)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list logs")
	}
	return entries, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
