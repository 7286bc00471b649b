// Package store persists medication logs. (patient_id, day) is unique: at
// most one status per patient per calendar day.
package store

import (
	"context"

	"medtrack/internal/adherence/models"
	id "medtrack/pkg/domain"
)

type Store interface {
	// UpsertStatus writes the entry, replacing any existing row for the same
	// (patient, day) regardless of its prior status. Explicit "mark taken"
	// uses this.
	UpsertStatus(ctx context.Context, entry *models.MedicationLog) error

	// InsertMissedIfAbsent inserts a missed row for each given day that has
	// no entry yet, in one batch, returning how many rows it materialized.
	// Existing rows are never overwritten, which is what keeps backfill
	// idempotent and non-destructive.
	InsertMissedIfAbsent(ctx context.Context, patientID id.UserID, days []models.Day) (int, error)

	// ListRange returns the patient's entries with from <= day <= to,
	// ordered by day ascending.
	ListRange(ctx context.Context, patientID id.UserID, from, to models.Day) ([]models.MedicationLog, error)
}
