package store

import (
	"context"
	"sort"
	"sync"

	"medtrack/internal/adherence/models"
	id "medtrack/pkg/domain"
)

type dayKey struct {
	patientID id.UserID
	day       models.Day
}

type InMemory struct {
	mu      sync.RWMutex
	entries map[dayKey]models.MedicationLog
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[dayKey]models.MedicationLog)}
}

func (s *InMemory) UpsertStatus(_ context.Context, entry *models.MedicationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey{patientID: entry.PatientID, day: entry.Day}
	if existing, ok := s.entries[key]; ok {
		// Replace status in place, keeping the original row identity.
		existing.Status = entry.Status
		s.entries[key] = existing
		return nil
	}
	s.entries[key] = *entry
	return nil
}

func (s *InMemory) InsertMissedIfAbsent(_ context.Context, patientID id.UserID, days []models.Day) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, day := range days {
		key := dayKey{patientID: patientID, day: day}
		if _, exists := s.entries[key]; exists {
			continue
		}
		s.entries[key] = models.MedicationLog{
			ID:        id.NewLogID(),
			PatientID: patientID,
			Day:       day,
			Status:    models.StatusMissed,
		}
		inserted++
	}
	return inserted, nil
}

func (s *InMemory) ListRange(_ context.Context, patientID id.UserID, from, to models.Day) ([]models.MedicationLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.MedicationLog
	for key, entry := range s.entries {
		if key.patientID != patientID {
			continue
		}
		if key.day < from || key.day > to {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}
