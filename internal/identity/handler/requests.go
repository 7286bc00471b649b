package handler

import (
	"strings"

	dErrors "medtrack/pkg/domain-errors"
)

// SignupRequest is the HTTP request body for POST /signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// Validate checks the fields the service cannot give a good message for.
// Email shape, role values and password rules stay in the domain layer. Name
// is optional: the service derives one from the email when it is blank.
func (r *SignupRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.TrimSpace(r.Role)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if r.Role == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "role is required")
	}
	return nil
}

// LoginRequest is the HTTP request body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.TrimSpace(r.Role)
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email and password are required")
	}
	if r.Role == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "role is required")
	}
	return nil
}
