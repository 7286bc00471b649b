// Package domain holds typed identifiers shared across bounded domains.
// Typed IDs keep a patient ID from being passed where a medication ID is
// expected; parsing enforces the trust-boundary invariant that IDs are valid,
// non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "medtrack/pkg/domain-errors"
)

type (
	// UserID identifies a user (patient or caretaker).
	UserID uuid.UUID
	// MedicationID identifies a medication registered by a patient.
	MedicationID uuid.UUID
	// LogID identifies a single medication log row.
	LogID uuid.UUID
	// SessionID identifies an issued session.
	SessionID uuid.UUID
)

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id MedicationID) String() string { return uuid.UUID(id).String() }
func (id LogID) String() string        { return uuid.UUID(id).String() }
func (id SessionID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// NewUserID returns a freshly generated user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewMedicationID returns a freshly generated medication ID.
func NewMedicationID() MedicationID { return MedicationID(uuid.New()) }

// NewLogID returns a freshly generated log ID.
func NewLogID() LogID { return LogID(uuid.New()) }

// NewSessionID returns a freshly generated session ID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// ParseUserID parses and validates a user ID from its string form.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	return UserID(u), err
}

// ParseMedicationID parses and validates a medication ID from its string form.
func ParseMedicationID(s string) (MedicationID, error) {
	u, err := parseUUID(s)
	return MedicationID(u), err
}

// ParseSessionID parses and validates a session ID from its string form.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s)
	return SessionID(u), err
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
