package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	adherenceservice "medtrack/internal/adherence/service"
	adherencestore "medtrack/internal/adherence/store"
	dashboardhandler "medtrack/internal/dashboard/handler"
	dashboardservice "medtrack/internal/dashboard/service"
	identityhandler "medtrack/internal/identity/handler"
	identityservice "medtrack/internal/identity/service"
	identitystore "medtrack/internal/identity/store"
	medicationhandler "medtrack/internal/medication/handler"
	medicationservice "medtrack/internal/medication/service"
	medicationstore "medtrack/internal/medication/store"
	"medtrack/internal/platform/metrics"
	pairingservice "medtrack/internal/pairing/service"
	pairingstore "medtrack/internal/pairing/store"
	sessionservice "medtrack/internal/session/service"
	sessionstore "medtrack/internal/session/store"
	"medtrack/internal/token"
)

// RouterSuite drives the full HTTP surface against in-memory stores. It is
// the closest thing to an end to end test that needs no containers.
type RouterSuite struct {
	suite.Suite
	server *httptest.Server
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	users := identitystore.NewInMemory()
	assignments := pairingstore.NewInMemory()
	medications := medicationstore.NewInMemory()
	logs := adherencestore.NewInMemory()

	pairing := pairingservice.NewService(users, assignments, pairingservice.NewInMemoryTx(), logger)
	identity := identityservice.NewService(users, pairing, assignments, logger)
	adherence := adherenceservice.NewService(logs, logger)
	medication := medicationservice.NewService(medications, logger)
	session := sessionservice.NewService(
		sessionstore.NewInMemory(),
		token.NewJWTService("router-test-key", "medtrack", "medtrack-api"),
		logger,
	)
	dashboard := dashboardservice.NewService(users, assignments, adherence, medication, logger)

	router := NewRouter(Deps{
		Identity:   identityhandler.New(identity, session, logger),
		Medication: medicationhandler.New(medication, adherence, logger),
		Dashboard:  dashboardhandler.New(dashboard, logger),
		Sessions:   session,
		Logger:     logger,
		Metrics:    m,
		Registry:   registry,
		Health: map[string]HealthChecker{
			"store": func(ctx context.Context) error { return nil },
		},
	})
	s.server = httptest.NewServer(router)
}

func (s *RouterSuite) TearDownTest() {
	s.server.Close()
}

func (s *RouterSuite) do(method, path, token string, body any) (*http.Response, map[string]any) {
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.server.URL+path, payload)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (s *RouterSuite) signup(name, email, role string) {
	resp, _ := s.do(http.MethodPost, "/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "hunter2hunter2",
		"role":     role,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
}

func (s *RouterSuite) login(email, role string) string {
	resp, body := s.do(http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": "hunter2hunter2",
		"role":     role,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	s.Require().NotEmpty(token)
	return token
}

func (s *RouterSuite) TestSignupWithoutCaretakerRejected() {
	resp, body := s.do(http.MethodPost, "/signup", "", map[string]string{
		"name":     "Pat",
		"email":    "pat@example.com",
		"password": "hunter2hunter2",
		"role":     "patient",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("not_found", body["error"])
}

func (s *RouterSuite) TestSignupValidation() {
	resp, _ := s.do(http.MethodPost, "/signup", "", map[string]string{
		"name": "Pat",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *RouterSuite) TestDuplicateEmailConflict() {
	s.signup("Cora", "cora@example.com", "caretaker")

	resp, _ := s.do(http.MethodPost, "/signup", "", map[string]string{
		"name":     "Other",
		"email":    "cora@example.com",
		"password": "hunter2hunter2",
		"role":     "caretaker",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *RouterSuite) TestLoginFlow() {
	s.signup("Cora", "cora@example.com", "caretaker")
	s.signup("Pat", "pat@example.com", "patient")

	resp, body := s.do(http.MethodPost, "/login", "", map[string]string{
		"email":    "pat@example.com",
		"password": "hunter2hunter2",
		"role":     "patient",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("patient", body["role"])
	s.NotEmpty(body["token"])
	s.NotEmpty(body["user_id"])
}

func (s *RouterSuite) TestLoginBadPassword() {
	s.signup("Cora", "cora@example.com", "caretaker")

	resp, _ := s.do(http.MethodPost, "/login", "", map[string]string{
		"email":    "cora@example.com",
		"password": "wrong",
		"role":     "caretaker",
	})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RouterSuite) TestUnassignedCaretakerLoginForbidden() {
	s.signup("Cora", "cora@example.com", "caretaker")

	resp, _ := s.do(http.MethodPost, "/login", "", map[string]string{
		"email":    "cora@example.com",
		"password": "hunter2hunter2",
		"role":     "caretaker",
	})
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *RouterSuite) TestMedicationLifecycle() {
	s.signup("Cora", "cora@example.com", "caretaker")
	s.signup("Pat", "pat@example.com", "patient")
	token := s.login("pat@example.com", "patient")

	resp, body := s.do(http.MethodPost, "/medications", token, map[string]string{
		"name":      "Aspirin",
		"dosage":    "100mg",
		"frequency": "daily",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.Equal("Aspirin", body["name"])

	// Case-insensitive duplicate.
	resp, _ = s.do(http.MethodPost, "/medications", token, map[string]string{
		"name":      "aspirin",
		"dosage":    "100mg",
		"frequency": "daily",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp, body = s.do(http.MethodGet, "/medications", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Len(body["medications"], 1)
}

func (s *RouterSuite) TestMarkAndPatientDashboard() {
	s.signup("Cora", "cora@example.com", "caretaker")
	s.signup("Pat", "pat@example.com", "patient")
	token := s.login("pat@example.com", "patient")

	resp, _ := s.do(http.MethodPost, "/medications/mark", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, body := s.do(http.MethodGet, "/dashboard/patient", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Pat", body["patient_name"])
	s.Equal("Cora", body["caretaker_name"])
	s.Equal("taken", body["today_status"])
	s.Len(body["logs"], 30, "29 backfilled days plus today")
}

func (s *RouterSuite) TestCaretakerDashboard() {
	s.signup("Cora", "cora@example.com", "caretaker")
	s.signup("Pat", "pat@example.com", "patient")
	token := s.login("cora@example.com", "caretaker")

	resp, body := s.do(http.MethodGet, "/dashboard/caretaker", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Cora", body["caretaker_name"])
	s.Equal("Pat", body["patient_name"])
	s.Equal("not marked", body["today_status"])
	s.EqualValues(29, body["missed_in_month"])
}

func (s *RouterSuite) TestRoleGates() {
	s.signup("Cora", "cora@example.com", "caretaker")
	s.signup("Pat", "pat@example.com", "patient")
	patientToken := s.login("pat@example.com", "patient")
	caretakerToken := s.login("cora@example.com", "caretaker")

	resp, _ := s.do(http.MethodGet, "/dashboard/caretaker", patientToken, nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/dashboard/patient", caretakerToken, nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/medications/mark", caretakerToken, nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *RouterSuite) TestMissingTokenUnauthorized() {
	resp, _ := s.do(http.MethodGet, "/dashboard/patient", "", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/dashboard/patient", "garbage-token", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RouterSuite) TestHealthz() {
	resp, body := s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("ok", body["status"])
	s.Equal("ok", body["store"])
}

func (s *RouterSuite) TestMetricsExposed() {
	resp, _ := s.do(http.MethodGet, "/metrics", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}
