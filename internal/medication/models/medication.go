package models

import (
	"strings"
	"time"

	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
)

// Medication is registered by a patient and never updated or deleted.
// (PatientID, lower(Name)) is unique so "Aspirin" and "aspirin" are the same
// medication.
type Medication struct {
	ID        id.MedicationID
	PatientID id.UserID
	Name      string
	Dosage    string
	Frequency string
	CreatedAt time.Time
}

// NewMedication validates and builds a medication record.
func NewMedication(medID id.MedicationID, patientID id.UserID, name, dosage, frequency string, now time.Time) (*Medication, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "medication name is required")
	}
	if strings.TrimSpace(dosage) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "dosage is required")
	}
	if strings.TrimSpace(frequency) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "frequency is required")
	}
	return &Medication{
		ID:        medID,
		PatientID: patientID,
		Name:      name,
		Dosage:    strings.TrimSpace(dosage),
		Frequency: strings.TrimSpace(frequency),
		CreatedAt: now,
	}, nil
}

// NormalizedName is the case-insensitive uniqueness key within a patient.
func (m *Medication) NormalizedName() string {
	return strings.ToLower(m.Name)
}
