// Package store persists the patient–caretaker assignment relation and its
// partial-bijection invariant: each patient and each caretaker appears in at
// most one assignment.
package store

import (
	"context"

	"medtrack/internal/pairing/models"
	id "medtrack/pkg/domain"
)

type Store interface {
	// Create inserts a new assignment. Returns sentinel.ErrConflict when
	// either the patient or the caretaker already appears in an assignment;
	// the losing side of a pairing race sees this.
	Create(ctx context.Context, assignment *models.Assignment) error

	// FindByPatient returns sentinel.ErrNotFound when the patient is unassigned.
	FindByPatient(ctx context.Context, patientID id.UserID) (*models.Assignment, error)

	// FindByCaretaker returns sentinel.ErrNotFound when the caretaker has no
	// patient. Caretaker login is gated on this.
	FindByCaretaker(ctx context.Context, caretakerID id.UserID) (*models.Assignment, error)

	// AssignedCaretakerIDs lists every caretaker that already has a patient.
	// Caretaker selection subtracts this set from all caretakers.
	AssignedCaretakerIDs(ctx context.Context) ([]id.UserID, error)
}
