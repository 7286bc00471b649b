package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medtrack/internal/adherence/models"
	id "medtrack/pkg/domain"
)

// Postgres persists medication logs. The (patient_id, day) unique constraint
// is the arbiter for both upsert and insert-if-absent.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) UpsertStatus(ctx context.Context, entry *models.MedicationLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO medication_logs (id, patient_id, day, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (patient_id, day) DO UPDATE SET status = EXCLUDED.status`,
		uuid.UUID(entry.ID), uuid.UUID(entry.PatientID), entry.Day.Time(), string(entry.Status),
	)
	if err != nil {
		return fmt.Errorf("upsert log status: %w", err)
	}
	return nil
}

func (s *Postgres) InsertMissedIfAbsent(ctx context.Context, patientID id.UserID, days []models.Day) (int, error) {
	if len(days) == 0 {
		return 0, nil
	}

	// One batched statement; DO NOTHING preserves the "never overwrite an
	// existing row" contract and makes repeated backfills idempotent.
	values := make([]string, 0, len(days))
	args := make([]any, 0, 2+len(days))
	args = append(args, uuid.UUID(patientID), string(models.StatusMissed))
	for _, day := range days {
		args = append(args, uuid.New(), day.Time())
		n := len(args)
		values = append(values, fmt.Sprintf("($%d, $1, $%d, $2)", n-1, n))
	}

	query := `
		INSERT INTO medication_logs (id, patient_id, day, status)
		VALUES ` + strings.Join(values, ", ") + `
		ON CONFLICT (patient_id, day) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("backfill missed logs: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("backfill missed logs: %w", err)
	}
	return int(inserted), nil
}

func (s *Postgres) ListRange(ctx context.Context, patientID id.UserID, from, to models.Day) ([]models.MedicationLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, day, status
		FROM medication_logs
		WHERE patient_id = $1 AND day BETWEEN $2 AND $3
		ORDER BY day`, uuid.UUID(patientID), from.Time(), to.Time())
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var entries []models.MedicationLog
	for rows.Next() {
		var (
			e        models.MedicationLog
			lid, pid uuid.UUID
			day      time.Time
			status   string
		)
		if err := rows.Scan(&lid, &pid, &day, &status); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		e.ID = id.LogID(lid)
		e.PatientID = id.UserID(pid)
		e.Day = models.DayOf(day)
		e.Status = models.Status(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
