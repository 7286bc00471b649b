package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"medtrack/internal/medication/models"
	"medtrack/internal/platform/postgres"
	id "medtrack/pkg/domain"
	"medtrack/pkg/platform/sentinel"
)

// Postgres persists medications. Case-insensitive name uniqueness is enforced
// by a unique index on (patient_id, lower(name)).
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateIfNameAvailable(ctx context.Context, medication *models.Medication) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO medications (id, patient_id, name, dosage, frequency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(medication.ID), uuid.UUID(medication.PatientID),
		medication.Name, medication.Dosage, medication.Frequency, medication.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create medication: %w", err)
	}
	return nil
}

func (s *Postgres) ListByPatient(ctx context.Context, patientID id.UserID) ([]*models.Medication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, name, dosage, frequency, created_at
		FROM medications WHERE patient_id = $1
		ORDER BY created_at, id`, uuid.UUID(patientID))
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()

	var medications []*models.Medication
	for rows.Next() {
		var (
			m        models.Medication
			mid, pid uuid.UUID
		)
		if err := rows.Scan(&mid, &pid, &m.Name, &m.Dosage, &m.Frequency, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan medication: %w", err)
		}
		m.ID = id.MedicationID(mid)
		m.PatientID = id.UserID(pid)
		medications = append(medications, &m)
	}
	return medications, rows.Err()
}
