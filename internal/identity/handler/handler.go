// Package handler wires the signup and login endpoints to the identity and
// session services.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	identitymodels "medtrack/internal/identity/models"
	identityservice "medtrack/internal/identity/service"
	sessionmodels "medtrack/internal/session/models"
	id "medtrack/pkg/domain"
	"medtrack/pkg/platform/httputil"
	"medtrack/pkg/requestcontext"
)

// Service defines the identity operations the handler needs.
type Service interface {
	Signup(ctx context.Context, input identityservice.SignupInput) (*identitymodels.User, error)
	Authenticate(ctx context.Context, email, password, role string) (*identitymodels.User, error)
}

// SessionIssuer mints a bearer session after successful authentication. The
// session service implements it.
type SessionIssuer interface {
	Issue(ctx context.Context, userID id.UserID, role string) (string, *sessionmodels.Session, error)
}

// Handler handles signup and login.
type Handler struct {
	identity Service
	sessions SessionIssuer
	logger   *slog.Logger
}

func New(identity Service, sessions SessionIssuer, logger *slog.Logger) *Handler {
	return &Handler{identity: identity, sessions: sessions, logger: logger}
}

// Register mounts the public identity endpoints. They carry no auth
// middleware; both are reachable anonymously.
func (h *Handler) Register(r chi.Router) {
	r.Post("/signup", h.handleSignup)
	r.Post("/login", h.handleLogin)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SignupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.identity.Signup(ctx, identityservice.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "signup rejected",
			"request_id", requestID,
			"role", req.Role,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, SignupResponse{
		Message: "signup successful",
		UserID:  user.ID.String(),
		Role:    user.Role.String(),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.identity.Authenticate(ctx, req.Email, req.Password, req.Role)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	token, _, err := h.sessions.Issue(ctx, user.ID, user.Role.String())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue session",
			"request_id", requestID,
			"user_id", user.ID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:  token,
		UserID: user.ID.String(),
		Role:   user.Role.String(),
	})
}
