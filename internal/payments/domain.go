package payments

import (
	"errors"
	"time"

	"github.com/amplio-agency/amplio/internal/lifecycle"
)

// Payment is the payout owed to an influencer for an assignment. PAID is
// terminal; disputed payments park in HOLD until resolved.
type Payment struct {
	ID           int64
	AssignmentID int64
	AmountCents  int64
	Currency     string
	Status       lifecycle.State
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Invoice is the settlement document generated when a payment reaches PAID.
// Generation is idempotent per payment.
type Invoice struct {
	ID          int64
	PaymentID   int64
	Number      string
	AmountLabel string
	IssuedAt    time.Time
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("payments: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("payments: invalid input")
	// ErrNotPaid indicates an invoice was requested for an unsettled payment.
	ErrNotPaid = errors.New("payments: payment not settled")
)
