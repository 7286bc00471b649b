//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"medtrack/internal/adherence/models"
	"medtrack/internal/adherence/store"
	identitymodels "medtrack/internal/identity/models"
	identitystore "medtrack/internal/identity/store"
	id "medtrack/pkg/domain"
	"medtrack/pkg/testutil/containers"
)

type PostgresLogStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	users     *identitystore.Postgres
	store     *store.Postgres
	patientID id.UserID
}

func TestPostgresLogStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLogStoreSuite))
}

func (s *PostgresLogStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.users = identitystore.NewPostgres(s.postgres.DB)
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresLogStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "medication_logs", "users"))
	s.patientID = id.NewUserID()
	err := s.users.Create(ctx, &identitymodels.User{
		ID:           s.patientID,
		Name:         "someone",
		Email:        "pat@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         identitymodels.RolePatient,
		CreatedAt:    time.Now().UTC(),
	})
	s.Require().NoError(err)
}

func days(from models.Day, n int) []models.Day {
	out := make([]models.Day, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, from.AddDays(i))
	}
	return out
}

func (s *PostgresLogStoreSuite) TestInsertMissedCountsOnlyNewRows() {
	ctx := context.Background()
	window := days(models.Day("2026-03-01"), 5)

	inserted, err := s.store.InsertMissedIfAbsent(ctx, s.patientID, window)
	s.Require().NoError(err)
	s.Equal(5, inserted)

	// A second pass over an overlapping window only adds the new days.
	inserted, err = s.store.InsertMissedIfAbsent(ctx, s.patientID, days(models.Day("2026-03-03"), 5))
	s.Require().NoError(err)
	s.Equal(2, inserted)
}

func (s *PostgresLogStoreSuite) TestInsertMissedPreservesTakenDays() {
	ctx := context.Background()
	taken := models.Day("2026-03-02")
	err := s.store.UpsertStatus(ctx, &models.MedicationLog{
		ID:        id.NewLogID(),
		PatientID: s.patientID,
		Day:       taken,
		Status:    models.StatusTaken,
	})
	s.Require().NoError(err)

	inserted, err := s.store.InsertMissedIfAbsent(ctx, s.patientID, days(models.Day("2026-03-01"), 3))
	s.Require().NoError(err)
	s.Equal(2, inserted)

	logs, err := s.store.ListRange(ctx, s.patientID, models.Day("2026-03-01"), models.Day("2026-03-03"))
	s.Require().NoError(err)
	s.Require().Len(logs, 3)
	s.Equal(models.StatusTaken, logs[1].Status)
}

func (s *PostgresLogStoreSuite) TestUpsertReplacesStatus() {
	ctx := context.Background()
	day := models.Day("2026-03-02")

	inserted, err := s.store.InsertMissedIfAbsent(ctx, s.patientID, []models.Day{day})
	s.Require().NoError(err)
	s.Equal(1, inserted)

	err = s.store.UpsertStatus(ctx, &models.MedicationLog{
		ID:        id.NewLogID(),
		PatientID: s.patientID,
		Day:       day,
		Status:    models.StatusTaken,
	})
	s.Require().NoError(err)

	logs, err := s.store.ListRange(ctx, s.patientID, day, day)
	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(models.StatusTaken, logs[0].Status)
}

func (s *PostgresLogStoreSuite) TestListRangeBoundsAndOrder() {
	ctx := context.Background()
	_, err := s.store.InsertMissedIfAbsent(ctx, s.patientID, days(models.Day("2026-03-01"), 10))
	s.Require().NoError(err)

	logs, err := s.store.ListRange(ctx, s.patientID, models.Day("2026-03-03"), models.Day("2026-03-06"))
	s.Require().NoError(err)
	s.Require().Len(logs, 4)
	s.Equal(models.Day("2026-03-03"), logs[0].Day)
	s.Equal(models.Day("2026-03-06"), logs[3].Day)
}

func (s *PostgresLogStoreSuite) TestPatientScoping() {
	ctx := context.Background()
	otherID := id.NewUserID()
	err := s.users.Create(ctx, &identitymodels.User{
		ID:           otherID,
		Name:         "someone else",
		Email:        "other@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         identitymodels.RolePatient,
		CreatedAt:    time.Now().UTC(),
	})
	s.Require().NoError(err)

	_, err = s.store.InsertMissedIfAbsent(ctx, s.patientID, days(models.Day("2026-03-01"), 3))
	s.Require().NoError(err)

	logs, err := s.store.ListRange(ctx, otherID, models.Day("2026-03-01"), models.Day("2026-03-31"))
	s.Require().NoError(err)
	s.Empty(logs)
}
