package influencers

import (
	"errors"
	"time"

	"github.com/amplio-agency/amplio/internal/lifecycle"
)

// Influencer is a creator on the agency roster. New influencers start in
// PENDING and must be approved before they can be assigned.
type Influencer struct {
	ID        int64
	Handle    string
	Platform  string
	RateCents int64
	Status    lifecycle.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Assignment books an approved influencer onto a campaign and tracks the
// delivery progression for that booking.
type Assignment struct {
	ID           int64
	CampaignID   int64
	InfluencerID int64
	Status       lifecycle.State
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("influencers: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("influencers: invalid input")
	// ErrNotApproved indicates the influencer has not passed vetting.
	ErrNotApproved = errors.New("influencers: influencer not approved")
)
