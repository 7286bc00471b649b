package service_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	adherencemodels "medtrack/internal/adherence/models"
	adherenceservice "medtrack/internal/adherence/service"
	adherencestore "medtrack/internal/adherence/store"
	"medtrack/internal/dashboard/service"
	identitymodels "medtrack/internal/identity/models"
	identitystore "medtrack/internal/identity/store"
	medicationservice "medtrack/internal/medication/service"
	medicationstore "medtrack/internal/medication/store"
	pairingmodels "medtrack/internal/pairing/models"
	pairingstore "medtrack/internal/pairing/store"
	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
	"medtrack/pkg/requestcontext"
)

type DashboardServiceSuite struct {
	suite.Suite
	users       *identitystore.InMemory
	assignments *pairingstore.InMemory
	logs        *adherencestore.InMemory
	medications *medicationservice.Service
	adherence   *adherenceservice.Service
	service     *service.Service
	patient     *identitymodels.User
	caretaker   *identitymodels.User
	now         time.Time
	ctx         context.Context
}

func (s *DashboardServiceSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.users = identitystore.NewInMemory()
	s.assignments = pairingstore.NewInMemory()
	s.logs = adherencestore.NewInMemory()
	s.medications = medicationservice.NewService(medicationstore.NewInMemory(), logger)
	s.adherence = adherenceservice.NewService(s.logs, logger)
	s.service = service.NewService(s.users, s.assignments, s.adherence, s.medications, logger)

	s.now = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.patient = s.addUser("Pat", "pat@example.com", identitymodels.RolePatient)
	s.caretaker = s.addUser("Cora", "cora@example.com", identitymodels.RoleCaretaker)
	err := s.assignments.Create(s.ctx, &pairingmodels.Assignment{
		PatientID:   s.patient.ID,
		CaretakerID: s.caretaker.ID,
		CreatedAt:   s.now,
	})
	s.Require().NoError(err)
}

func (s *DashboardServiceSuite) addUser(name, email string, role identitymodels.Role) *identitymodels.User {
	user, err := identitymodels.NewUser(id.NewUserID(), name, email, "$2a$10$hash", "", role, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(s.ctx, user))
	return user
}

func (s *DashboardServiceSuite) today() adherencemodels.Day {
	return adherencemodels.DayOf(s.now)
}

func (s *DashboardServiceSuite) TestPatientDashboardBackfills() {
	dashboard, err := s.service.ForPatient(s.ctx, s.patient.ID)
	s.Require().NoError(err)

	s.Equal("Pat", dashboard.PatientName)
	s.Equal("Cora", dashboard.CaretakerName)
	s.Len(dashboard.Logs, 29, "a fresh patient sees 29 backfilled missed days")
	s.Equal("0.0", dashboard.Summary.AdherenceRate)
	s.Equal(adherencemodels.NotMarked, dashboard.Summary.TodayStatus)
	s.Empty(dashboard.Medications)
}

func (s *DashboardServiceSuite) TestPatientDashboardAfterMark() {
	_, err := s.adherence.MarkTakenToday(s.ctx, s.patient.ID)
	s.Require().NoError(err)
	_, err = s.medications.Add(s.ctx, s.patient.ID, "Aspirin", "100mg", "daily")
	s.Require().NoError(err)

	dashboard, err := s.service.ForPatient(s.ctx, s.patient.ID)
	s.Require().NoError(err)

	s.Len(dashboard.Logs, 30)
	s.Equal(string(adherencemodels.StatusTaken), dashboard.Summary.TodayStatus)
	s.Equal(1, dashboard.Summary.Streak)
	s.Require().Len(dashboard.Medications, 1)
	s.Equal("Aspirin", dashboard.Medications[0].Name)
}

func (s *DashboardServiceSuite) TestPatientDashboardIdempotentBackfill() {
	_, err := s.service.ForPatient(s.ctx, s.patient.ID)
	s.Require().NoError(err)
	dashboard, err := s.service.ForPatient(s.ctx, s.patient.ID)
	s.Require().NoError(err)
	s.Len(dashboard.Logs, 29)
}

func (s *DashboardServiceSuite) TestCaretakerDashboard() {
	_, err := s.adherence.MarkTakenToday(s.ctx, s.patient.ID)
	s.Require().NoError(err)

	dashboard, err := s.service.ForCaretaker(s.ctx, s.caretaker.ID)
	s.Require().NoError(err)

	s.Equal("Cora", dashboard.CaretakerName)
	s.Require().NotNil(dashboard.Patient)
	s.Equal(s.patient.ID, dashboard.Patient.ID)
	s.Len(dashboard.Logs, 30)
	s.Equal(1, dashboard.Summary.TakenInWeek)
	s.Equal(29, dashboard.Summary.MissedInMonth)
}

func (s *DashboardServiceSuite) TestCaretakerWithoutAssignment() {
	loner := s.addUser("Dana", "dana@example.com", identitymodels.RoleCaretaker)

	_, err := s.service.ForCaretaker(s.ctx, loner.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *DashboardServiceSuite) TestPatientWithoutAssignment() {
	stray := s.addUser("Solo", "solo@example.com", identitymodels.RolePatient)

	_, err := s.service.ForPatient(s.ctx, stray.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDashboardServiceSuite(t *testing.T) {
	suite.Run(t, new(DashboardServiceSuite))
}
