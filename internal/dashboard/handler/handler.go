// Package handler exposes the two dashboard reads. Each is gated on its
// role; the payload shapes are the service DTOs flattened for the wire.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	adherencemodels "medtrack/internal/adherence/models"
	"medtrack/internal/dashboard/service"
	id "medtrack/pkg/domain"
	"medtrack/pkg/platform/httputil"
	"medtrack/pkg/requestcontext"
)

// Service defines the dashboard reads the handler needs.
type Service interface {
	ForPatient(ctx context.Context, patientID id.UserID) (*service.PatientDashboard, error)
	ForCaretaker(ctx context.Context, caretakerID id.UserID) (*service.CaretakerDashboard, error)
}

type Handler struct {
	dashboards Service
	logger     *slog.Logger
}

func New(dashboards Service, logger *slog.Logger) *Handler {
	return &Handler{dashboards: dashboards, logger: logger}
}

// RegisterPatient mounts the patient dashboard; the caller gates the router
// on the patient role.
func (h *Handler) RegisterPatient(r chi.Router) {
	r.Get("/dashboard/patient", h.handlePatient)
}

// RegisterCaretaker mounts the caretaker dashboard behind the caretaker role.
func (h *Handler) RegisterCaretaker(r chi.Router) {
	r.Get("/dashboard/caretaker", h.handleCaretaker)
}

// LogEntry is the wire shape of one day in the adherence window.
type LogEntry struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

func toLogEntries(logs []adherencemodels.MedicationLog) []LogEntry {
	entries := make([]LogEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, LogEntry{Date: l.Day.String(), Status: string(l.Status)})
	}
	return entries
}

// PatientDashboardResponse is the body of GET /dashboard/patient.
type PatientDashboardResponse struct {
	PatientName   string             `json:"patient_name"`
	CaretakerName string             `json:"caretaker_name"`
	AdherenceRate string             `json:"adherence_rate"`
	Streak        int                `json:"streak"`
	TodayStatus   string             `json:"today_status"`
	Logs          []LogEntry         `json:"logs"`
	Medications   []MedicationEntry  `json:"medications"`
}

// MedicationEntry is the wire shape of one medication on the dashboard.
type MedicationEntry struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

// CaretakerDashboardResponse is the body of GET /dashboard/caretaker.
type CaretakerDashboardResponse struct {
	CaretakerName string     `json:"caretaker_name"`
	PatientName   string     `json:"patient_name"`
	PatientEmail  string     `json:"patient_email"`
	PatientPhone  string     `json:"patient_phone"`
	AdherenceRate string     `json:"adherence_rate"`
	Streak        int        `json:"streak"`
	TodayStatus   string     `json:"today_status"`
	TakenInWeek   int        `json:"taken_in_week"`
	MissedInMonth int        `json:"missed_in_month"`
	Logs          []LogEntry `json:"logs"`
}

func (h *Handler) handlePatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := requestcontext.UserID(ctx)

	dashboard, err := h.dashboards.ForPatient(ctx, patientID)
	if err != nil {
		h.logger.ErrorContext(ctx, "patient dashboard failed",
			"request_id", requestcontext.RequestID(ctx),
			"patient_id", patientID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	medications := make([]MedicationEntry, 0, len(dashboard.Medications))
	for _, m := range dashboard.Medications {
		medications = append(medications, MedicationEntry{
			Name:      m.Name,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, PatientDashboardResponse{
		PatientName:   dashboard.PatientName,
		CaretakerName: dashboard.CaretakerName,
		AdherenceRate: dashboard.Summary.AdherenceRate,
		Streak:        dashboard.Summary.Streak,
		TodayStatus:   dashboard.Summary.TodayStatus,
		Logs:          toLogEntries(dashboard.Logs),
		Medications:   medications,
	})
}

func (h *Handler) handleCaretaker(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caretakerID := requestcontext.UserID(ctx)

	dashboard, err := h.dashboards.ForCaretaker(ctx, caretakerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "caretaker dashboard failed",
			"request_id", requestcontext.RequestID(ctx),
			"caretaker_id", caretakerID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, CaretakerDashboardResponse{
		CaretakerName: dashboard.CaretakerName,
		PatientName:   dashboard.Patient.Name,
		PatientEmail:  dashboard.Patient.Email,
		PatientPhone:  dashboard.Patient.Phone,
		AdherenceRate: dashboard.Summary.AdherenceRate,
		Streak:        dashboard.Summary.Streak,
		TodayStatus:   dashboard.Summary.TodayStatus,
		TakenInWeek:   dashboard.Summary.TakenInWeek,
		MissedInMonth: dashboard.Summary.MissedInMonth,
		Logs:          toLogEntries(dashboard.Logs),
	})
}
