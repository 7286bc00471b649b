// Package store persists medications. (patient_id, lower(name)) is unique.
package store

import (
	"context"

	"medtrack/internal/medication/models"
	id "medtrack/pkg/domain"
)

type Store interface {
	// CreateIfNameAvailable inserts the medication unless the patient already
	// has one with the same case-insensitive name, in which case it returns
	// sentinel.ErrAlreadyUsed.
	CreateIfNameAvailable(ctx context.Context, medication *models.Medication) error

	// ListByPatient returns the patient's medications ordered by creation.
	ListByPatient(ctx context.Context, patientID id.UserID) ([]*models.Medication, error)
}
