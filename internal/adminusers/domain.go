package adminusers

import (
	"errors"
	"time"

	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/policy"
)

// AdminUser is a console operator. Deletion is soft: the row moves to DELETED
// and stays for the audit trail. An operator can never delete themselves.
type AdminUser struct {
	ID           int64
	Email        string
	Name         string
	Role         policy.Role
	PasswordHash string
	Status       lifecycle.State
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("adminusers: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("adminusers: invalid input")
	// ErrEmailTaken indicates a duplicate email.
	ErrEmailTaken = errors.New("adminusers: email already registered")
)
