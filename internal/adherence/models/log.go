package models

import (
	"time"

	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
)

// Status of a medication log entry. Backfill only ever writes StatusMissed;
// explicit patient marks write StatusTaken.
type Status string

const (
	StatusTaken  Status = "taken"
	StatusMissed Status = "missed"
)

// NotMarked is reported for today when no log row exists. It is never
// persisted.
const NotMarked = "not marked"

const dayLayout = "2006-01-02"

// Day is a calendar day in ISO form (yyyy-mm-dd). ISO dates sort
// lexicographically, so string comparison is date comparison.
type Day string

// DayOf truncates a point in time to its calendar day.
func DayOf(t time.Time) Day { return Day(t.Format(dayLayout)) }

// ParseDay validates an ISO calendar day.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "day must be in yyyy-mm-dd form")
	}
	return DayOf(t), nil
}

// Time returns midnight UTC of the day. Day values are produced by DayOf or
// ParseDay, so the parse cannot fail.
func (d Day) Time() time.Time {
	t, _ := time.Parse(dayLayout, string(d))
	return t
}

// AddDays returns the day offset by n calendar days (n may be negative).
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

func (d Day) Before(other Day) bool { return d < other }
func (d Day) String() string        { return string(d) }

// MedicationLog records one status per patient per calendar day.
// (PatientID, Day) is unique.
type MedicationLog struct {
	ID        id.LogID
	PatientID id.UserID
	Day       Day
	Status    Status
}
