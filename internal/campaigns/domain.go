package campaigns

import (
	"errors"
	"time"

	"github.com/amplio-agency/amplio/internal/lifecycle"
)

// Campaign is a booked engagement for a brand. Approval is a companion flag
// to the status: a campaign only becomes ACTIVE with approved=true, and the
// two are always written together.
type Campaign struct {
	ID          int64
	BrandID     int64
	Name        string
	BudgetCents int64
	Currency    string
	Status      lifecycle.State
	Approved    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	// ErrNotFound indicates the campaign does not exist.
	ErrNotFound = errors.New("campaigns: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("campaigns: invalid input")
)
