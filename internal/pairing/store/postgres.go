package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"medtrack/internal/pairing/models"
	"medtrack/internal/platform/postgres"
	id "medtrack/pkg/domain"
	"medtrack/pkg/platform/sentinel"
	txcontext "medtrack/pkg/platform/tx"
)

// Postgres persists assignments. The unique constraints on patient_id and
// caretaker_id are what actually hold the bijection under concurrency; this
// store just translates their violation into sentinel.ErrConflict.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, assignment *models.Assignment) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO assignments (patient_id, caretaker_id, created_at)
		VALUES ($1, $2, $3)`,
		uuid.UUID(assignment.PatientID), uuid.UUID(assignment.CaretakerID), assignment.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

func (s *Postgres) FindByPatient(ctx context.Context, patientID id.UserID) (*models.Assignment, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT patient_id, caretaker_id, created_at
		FROM assignments WHERE patient_id = $1`, uuid.UUID(patientID))
	return scanAssignment(row)
}

func (s *Postgres) FindByCaretaker(ctx context.Context, caretakerID id.UserID) (*models.Assignment, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT patient_id, caretaker_id, created_at
		FROM assignments WHERE caretaker_id = $1`, uuid.UUID(caretakerID))
	return scanAssignment(row)
}

func (s *Postgres) AssignedCaretakerIDs(ctx context.Context) ([]id.UserID, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT caretaker_id FROM assignments`)
	if err != nil {
		return nil, fmt.Errorf("list assigned caretakers: %w", err)
	}
	defer rows.Close()

	var ids []id.UserID
	for rows.Next() {
		var caretakerID uuid.UUID
		if err := rows.Scan(&caretakerID); err != nil {
			return nil, fmt.Errorf("scan caretaker id: %w", err)
		}
		ids = append(ids, id.UserID(caretakerID))
	}
	return ids, rows.Err()
}

func scanAssignment(row *sql.Row) (*models.Assignment, error) {
	var (
		a                      models.Assignment
		patientID, caretakerID uuid.UUID
	)
	err := row.Scan(&patientID, &caretakerID, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan assignment: %w", err)
	}
	a.PatientID = id.UserID(patientID)
	a.CaretakerID = id.UserID(caretakerID)
	return &a, nil
}
