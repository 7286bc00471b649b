package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	adherencemodels "medtrack/internal/adherence/models"
	"medtrack/internal/medication/handler"
	medicationmodels "medtrack/internal/medication/models"
	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
	"medtrack/pkg/requestcontext"
	"medtrack/pkg/testutil"
)

type fakeService struct {
	added    []string
	addErr   error
	listErr  error
	existing []*medicationmodels.Medication
}

func (f *fakeService) Add(_ context.Context, patientID id.UserID, name, dosage, frequency string) (*medicationmodels.Medication, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = append(f.added, name)
	return &medicationmodels.Medication{
		ID:        id.NewMedicationID(),
		PatientID: patientID,
		Name:      name,
		Dosage:    dosage,
		Frequency: frequency,
	}, nil
}

func (f *fakeService) List(context.Context, id.UserID) ([]*medicationmodels.Medication, error) {
	return f.existing, f.listErr
}

type fakeMarker struct {
	day adherencemodels.Day
	err error
}

func (f *fakeMarker) MarkTakenToday(context.Context, id.UserID) (adherencemodels.Day, error) {
	return f.day, f.err
}

func mount(service *fakeService, marker *fakeMarker) (http.Handler, id.UserID) {
	patientID := id.NewUserID()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithUserID(req.Context(), patientID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	handler.New(service, marker, slog.New(slog.DiscardHandler)).Register(r)
	return r, patientID
}

func TestAddMedication(t *testing.T) {
	service := &fakeService{}
	router, _ := mount(service, &fakeMarker{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/medications", handler.AddRequest{
		Name: "Aspirin", Dosage: "10mg", Frequency: "daily",
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertJSONContains(t, rr, "name", "Aspirin")
	require.Equal(t, []string{"Aspirin"}, service.added)
}

func TestAddMedicationMissingName(t *testing.T) {
	service := &fakeService{}
	router, _ := mount(service, &fakeMarker{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/medications", handler.AddRequest{Dosage: "10mg"})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	require.Empty(t, service.added)
}

func TestAddMedicationMalformedBody(t *testing.T) {
	router, _ := mount(&fakeService{}, &fakeMarker{})

	req := testutil.NewRequestWithBody(t, http.MethodPost, "/medications", "{not json")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}

func TestAddMedicationDuplicate(t *testing.T) {
	service := &fakeService{addErr: dErrors.New(dErrors.CodeConflict, "medication already exists for this patient")}
	router, _ := mount(service, &fakeMarker{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/medications", handler.AddRequest{Name: "Aspirin"})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
}

func TestListMedications(t *testing.T) {
	service := &fakeService{existing: []*medicationmodels.Medication{
		{ID: id.NewMedicationID(), Name: "Aspirin", Dosage: "10mg", Frequency: "daily"},
	}}
	router, _ := mount(service, &fakeMarker{})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/medications"))

	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONHasKey(t, rr, "medications")
}

func TestMarkTaken(t *testing.T) {
	day := adherencemodels.DayOf(time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))
	router, _ := mount(&fakeService{}, &fakeMarker{day: day})

	req := testutil.NewRequestWithBody(t, http.MethodPost, "/medications/mark", "")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "message", "marked as taken")
	testutil.AssertJSONContains(t, rr, "date", "2026-03-15")
}
