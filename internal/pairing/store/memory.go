package store

import (
	"context"
	"sync"

	"medtrack/internal/pairing/models"
	id "medtrack/pkg/domain"
	"medtrack/pkg/platform/sentinel"
)

// InMemory keeps both directions of the bijection indexed so the uniqueness
// check is a pair of map lookups under one lock.
type InMemory struct {
	mu          sync.RWMutex
	byPatient   map[id.UserID]*models.Assignment
	byCaretaker map[id.UserID]*models.Assignment
}

func NewInMemory() *InMemory {
	return &InMemory{
		byPatient:   make(map[id.UserID]*models.Assignment),
		byCaretaker: make(map[id.UserID]*models.Assignment),
	}
}

func (s *InMemory) Create(_ context.Context, assignment *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byPatient[assignment.PatientID]; taken {
		return sentinel.ErrConflict
	}
	if _, taken := s.byCaretaker[assignment.CaretakerID]; taken {
		return sentinel.ErrConflict
	}
	cp := *assignment
	s.byPatient[assignment.PatientID] = &cp
	s.byCaretaker[assignment.CaretakerID] = &cp
	return nil
}

func (s *InMemory) FindByPatient(_ context.Context, patientID id.UserID) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byPatient[patientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemory) FindByCaretaker(_ context.Context, caretakerID id.UserID) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byCaretaker[caretakerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemory) AssignedCaretakerIDs(_ context.Context) ([]id.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]id.UserID, 0, len(s.byCaretaker))
	for caretakerID := range s.byCaretaker {
		ids = append(ids, caretakerID)
	}
	return ids, nil
}
