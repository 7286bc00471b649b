package models

import (
	"strings"
	"time"

	id "medtrack/pkg/domain"
	dErrors "medtrack/pkg/domain-errors"
)

// Role is fixed at signup and never changes afterwards.
type Role string

const (
	RolePatient   Role = "patient"
	RoleCaretaker Role = "caretaker"
)

// ParseRole validates the role string from a signup or login request.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient, nil
	case RoleCaretaker:
		return RoleCaretaker, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "role must be patient or caretaker")
	}
}

func (r Role) String() string { return string(r) }

// User is the identity record. Email is stored lowercased and is unique
// across all users; PasswordHash is a bcrypt digest.
type User struct {
	ID           id.UserID
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         Role
	CreatedAt    time.Time
}

// NewUser builds a user record, normalizing the email and validating the
// fields the store cannot check.
func NewUser(userID id.UserID, name, email, passwordHash, phone string, role Role, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "a valid email is required")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password hash is required")
	}
	if role != RolePatient && role != RoleCaretaker {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "role must be patient or caretaker")
	}
	return &User{
		ID:           userID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        strings.TrimSpace(phone),
		Role:         role,
		CreatedAt:    now,
	}, nil
}
