package models

import (
	"time"

	id "medtrack/pkg/domain"
)

// Assignment is the exclusive 1:1 binding between one patient and one
// caretaker. Both columns are unique across the relation, so the set of
// assignments forms a partial bijection. Assignments are created exactly once,
// at patient signup, and never mutated or deleted.
type Assignment struct {
	PatientID   id.UserID
	CaretakerID id.UserID
	CreatedAt   time.Time
}
