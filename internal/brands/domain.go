package brands

import (
	"errors"
	"time"

	"github.com/amplio-agency/amplio/internal/lifecycle"
)

// Brand is a client account moving through the sales pipeline. The stage is
// an open tag set: any well-formed stage is storable, the console seeds the
// well-known ones.
type Brand struct {
	ID        int64
	Name      string
	Contact   string
	Stage     lifecycle.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	// ErrNotFound indicates the brand does not exist.
	ErrNotFound = errors.New("brands: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("brands: invalid input")
)
