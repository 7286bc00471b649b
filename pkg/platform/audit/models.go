// Package audit captures who did what, when, for compliance and debugging.
// Events are emitted from domain services, kept transport-agnostic, and
// fanned out to stores and sinks by the publisher.
package audit

import (
	"context"
	"time"

	id "medtrack/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. Categories
// drive retention: compliance events outlive operational ones.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance in a
	// medication context: account creation, pairing, dose records.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authentication outcomes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine visibility events.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Timestamp time.Time
	UserID    id.UserID
	Action    string
	Role      string
	Email     string
	// RequestID correlates the event with the originating HTTP request.
	RequestID string
	// Detail carries action-specific context (medication name, days
	// backfilled). Free-form, never parsed.
	Detail string
}

// Action names. The string values are part of the stored record; renaming one
// orphans history.
type Action string

const (
	EventUserCreated       Action = "user_created"
	EventPatientPaired     Action = "patient_paired"
	EventLoginSucceeded    Action = "login_succeeded"
	EventLoginDenied       Action = "login_denied"
	EventMedicationAdded   Action = "medication_added"
	EventDoseMarked        Action = "dose_marked"
	EventBackfillCompleted Action = "backfill_completed"
)

var eventCategories = map[Action]EventCategory{
	EventUserCreated:       CategoryCompliance,
	EventPatientPaired:     CategoryCompliance,
	EventLoginSucceeded:    CategorySecurity,
	EventLoginDenied:       CategorySecurity,
	EventMedicationAdded:   CategoryCompliance,
	EventDoseMarked:        CategoryCompliance,
	EventBackfillCompleted: CategoryOperations,
}

// Category maps an action onto its category, defaulting to operations.
func (a Action) Category() EventCategory {
	if c, ok := eventCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Sink receives events without offering reads. The Kafka publisher is a sink.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a sink that can also be queried, for the audit trail endpoints and
// tests.
type Store interface {
	Sink
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
