package store

import (
	"context"
	"sort"
	"sync"

	"medtrack/internal/medication/models"
	id "medtrack/pkg/domain"
	"medtrack/pkg/platform/sentinel"
)

type InMemory struct {
	mu          sync.RWMutex
	medications map[id.UserID][]*models.Medication
}

func NewInMemory() *InMemory {
	return &InMemory{medications: make(map[id.UserID][]*models.Medication)}
}

func (s *InMemory) CreateIfNameAvailable(_ context.Context, medication *models.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.medications[medication.PatientID] {
		if existing.NormalizedName() == medication.NormalizedName() {
			return sentinel.ErrAlreadyUsed
		}
	}
	cp := *medication
	s.medications[medication.PatientID] = append(s.medications[medication.PatientID], &cp)
	return nil
}

func (s *InMemory) ListByPatient(_ context.Context, patientID id.UserID) ([]*models.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Medication, 0, len(s.medications[patientID]))
	for _, m := range s.medications[patientID] {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}
