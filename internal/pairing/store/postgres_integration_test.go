//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	identitymodels "medtrack/internal/identity/models"
	identitystore "medtrack/internal/identity/store"
	"medtrack/internal/pairing/models"
	"medtrack/internal/pairing/store"
	id "medtrack/pkg/domain"
	"medtrack/pkg/platform/sentinel"
	"medtrack/pkg/testutil/containers"
)

type PostgresAssignmentStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	users    *identitystore.Postgres
	store    *store.Postgres
}

func TestPostgresAssignmentStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAssignmentStoreSuite))
}

func (s *PostgresAssignmentStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.users = identitystore.NewPostgres(s.postgres.DB)
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresAssignmentStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "assignments", "users"))
}

func (s *PostgresAssignmentStoreSuite) seedUser(email string, role identitymodels.Role) id.UserID {
	userID := id.NewUserID()
	err := s.users.Create(context.Background(), &identitymodels.User{
		ID:           userID,
		Name:         "someone",
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	s.Require().NoError(err)
	return userID
}

func (s *PostgresAssignmentStoreSuite) TestCreateAndFindBothDirections() {
	ctx := context.Background()
	patientID := s.seedUser("pat@example.com", identitymodels.RolePatient)
	caretakerID := s.seedUser("care@example.com", identitymodels.RoleCaretaker)

	err := s.store.Create(ctx, &models.Assignment{
		PatientID:   patientID,
		CaretakerID: caretakerID,
		CreatedAt:   time.Now().UTC(),
	})
	s.Require().NoError(err)

	byPatient, err := s.store.FindByPatient(ctx, patientID)
	s.Require().NoError(err)
	s.Equal(caretakerID, byPatient.CaretakerID)

	byCaretaker, err := s.store.FindByCaretaker(ctx, caretakerID)
	s.Require().NoError(err)
	s.Equal(patientID, byCaretaker.PatientID)
}

func (s *PostgresAssignmentStoreSuite) TestCaretakerBoundOnce() {
	ctx := context.Background()
	caretakerID := s.seedUser("care@example.com", identitymodels.RoleCaretaker)
	first := s.seedUser("pat1@example.com", identitymodels.RolePatient)
	second := s.seedUser("pat2@example.com", identitymodels.RolePatient)

	err := s.store.Create(ctx, &models.Assignment{PatientID: first, CaretakerID: caretakerID, CreatedAt: time.Now().UTC()})
	s.Require().NoError(err)

	err = s.store.Create(ctx, &models.Assignment{PatientID: second, CaretakerID: caretakerID, CreatedAt: time.Now().UTC()})
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresAssignmentStoreSuite) TestConcurrentCreateOneCaretaker() {
	ctx := context.Background()
	caretakerID := s.seedUser("care@example.com", identitymodels.RoleCaretaker)

	const racers = 20
	patients := make([]id.UserID, racers)
	for i := range patients {
		patients[i] = s.seedUser(string(rune('a'+i))+"@example.com", identitymodels.RolePatient)
	}

	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.store.Create(ctx, &models.Assignment{
				PatientID:   patients[i],
				CaretakerID: caretakerID,
				CreatedAt:   time.Now().UTC(),
			})
		}(i)
	}
	wg.Wait()

	var won int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			s.Require().ErrorIs(err, sentinel.ErrConflict)
		}
	}
	s.Equal(1, won)

	assigned, err := s.store.AssignedCaretakerIDs(ctx)
	s.Require().NoError(err)
	s.Equal([]id.UserID{caretakerID}, assigned)
}

func (s *PostgresAssignmentStoreSuite) TestUnassignedNotFound() {
	_, err := s.store.FindByCaretaker(context.Background(), id.NewUserID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
