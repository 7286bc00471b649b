// Package handler exposes the patient-only medication endpoints, including
// the mark-taken endpoint that writes to the adherence log.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	adherencemodels "medtrack/internal/adherence/models"
	medicationmodels "medtrack/internal/medication/models"
	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
	"medtrack/pkg/platform/httputil"
	"medtrack/pkg/requestcontext"
)

// Service defines the medication operations the handler needs.
type Service interface {
	Add(ctx context.Context, patientID id.UserID, name, dosage, frequency string) (*medicationmodels.Medication, error)
	List(ctx context.Context, patientID id.UserID) ([]*medicationmodels.Medication, error)
}

// DoseMarker is the adherence operation behind POST /medications/mark.
type DoseMarker interface {
	MarkTakenToday(ctx context.Context, patientID id.UserID) (adherencemodels.Day, error)
}

type Handler struct {
	medications Service
	adherence   DoseMarker
	logger      *slog.Logger
}

func New(medications Service, adherence DoseMarker, logger *slog.Logger) *Handler {
	return &Handler{medications: medications, adherence: adherence, logger: logger}
}

// Register mounts the medication endpoints. The caller wraps them in auth
// and patient-role middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/medications", h.handleAdd)
	r.Get("/medications", h.handleList)
	r.Post("/medications/mark", h.handleMark)
}

// AddRequest is the HTTP request body for POST /medications.
type AddRequest struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

func (r *AddRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	return nil
}

// MedicationResponse is the wire shape of one medication.
type MedicationResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

func toMedicationResponse(m *medicationmodels.Medication) MedicationResponse {
	return MedicationResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		Dosage:    m.Dosage,
		Frequency: m.Frequency,
	}
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	patientID := requestcontext.UserID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	medication, err := h.medications.Add(ctx, patientID, req.Name, req.Dosage, req.Frequency)
	if err != nil {
		h.logger.WarnContext(ctx, "medication add rejected",
			"request_id", requestID,
			"patient_id", patientID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toMedicationResponse(medication))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := requestcontext.UserID(ctx)

	medications, err := h.medications.List(ctx, patientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	payload := make([]MedicationResponse, 0, len(medications))
	for _, m := range medications {
		payload = append(payload, toMedicationResponse(m))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"medications": payload})
}

func (h *Handler) handleMark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := requestcontext.UserID(ctx)

	day, err := h.adherence.MarkTakenToday(ctx, patientID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to mark dose",
			"request_id", requestcontext.RequestID(ctx),
			"patient_id", patientID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "marked as taken",
		"date":    day.String(),
	})
}
