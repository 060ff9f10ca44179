package content

import (
	"errors"
	"time"

	"github.com/amplio-agency/amplio/internal/lifecycle"
)

// Submission is a piece of deliverable content attached to an assignment.
// Reviews are final: once APPROVED or REJECTED the record never changes.
type Submission struct {
	ID           int64
	AssignmentID int64
	URL          string
	Status       lifecycle.State
	Feedback     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("content: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("content: invalid input")
)
