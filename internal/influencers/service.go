package influencers

import (
	"context"
	"fmt"
	"strings"

	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/policy"
	"github.com/amplio-agency/amplio/internal/workflow"
)

// RepositoryPort describes influencer persistence used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, influencer Influencer) (Influencer, error)
	Get(ctx context.Context, id int64) (Influencer, error)
	List(ctx context.Context) ([]Influencer, error)
}

// AssignmentRepositoryPort describes assignment persistence.
type AssignmentRepositoryPort interface {
	CreateAssignment(ctx context.Context, assignment Assignment) (Assignment, error)
	GetAssignment(ctx context.Context, id int64) (Assignment, error)
	ListAssignments(ctx context.Context, campaignID int64) ([]Assignment, error)
}

// Service handles influencer and assignment business logic.
type Service struct {
	repo        RepositoryPort
	assignments AssignmentRepositoryPort
	wf          *workflow.Service
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, assignments AssignmentRepositoryPort, wf *workflow.Service) *Service {
	return &Service{repo: repo, assignments: assignments, wf: wf}
}

// Create inserts a new influencer in PENDING.
func (s *Service) Create(ctx context.Context, handle, platform string, rateCents int64) (Influencer, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return Influencer{}, fmt.Errorf("%w: handle required", ErrValidation)
	}
	return s.repo.Create(ctx, Influencer{
		Handle:    handle,
		Platform:  strings.TrimSpace(platform),
		RateCents: rateCents,
		Status:    lifecycle.InfluencerPending,
	})
}

// Get returns one influencer.
func (s *Service) Get(ctx context.Context, id int64) (Influencer, error) {
	return s.repo.Get(ctx, id)
}

// List returns the roster.
func (s *Service) List(ctx context.Context) ([]Influencer, error) {
	return s.repo.List(ctx)
}

// Approve passes the influencer through vetting.
func (s *Service) Approve(ctx context.Context, actor policy.Actor, id int64) (Influencer, error) {
	if _, err := s.wf.Apply(ctx, workflow.Request{
		Actor:  actor,
		Type:   workflow.TypeInfluencer,
		ID:     id,
		Action: lifecycle.ActionApprove,
		Target: lifecycle.InfluencerApproved,
	}); err != nil {
		return Influencer{}, err
	}
	return s.repo.Get(ctx, id)
}

// Assign books an approved influencer onto a campaign.
func (s *Service) Assign(ctx context.Context, campaignID, influencerID int64) (Assignment, error) {
	if campaignID == 0 || influencerID == 0 {
		return Assignment{}, fmt.Errorf("%w: campaign and influencer required", ErrValidation)
	}
	influencer, err := s.repo.Get(ctx, influencerID)
	if err != nil {
		return Assignment{}, err
	}
	if influencer.Status != lifecycle.InfluencerApproved {
		return Assignment{}, ErrNotApproved
	}
	return s.assignments.CreateAssignment(ctx, Assignment{
		CampaignID:   campaignID,
		InfluencerID: influencerID,
		Status:       lifecycle.AssignmentAssigned,
	})
}

// ListAssignments returns bookings, optionally filtered by campaign.
func (s *Service) ListAssignments(ctx context.Context, campaignID int64) ([]Assignment, error) {
	return s.assignments.ListAssignments(ctx, campaignID)
}

// SetAssignmentStatus advances the delivery progression. Transitions are
// forward-only; the workflow rejects anything else.
func (s *Service) SetAssignmentStatus(ctx context.Context, actor policy.Actor, id int64, status string) (Assignment, error) {
	target := lifecycle.State(strings.ToUpper(strings.TrimSpace(status)))
	if _, err := s.wf.Apply(ctx, workflow.Request{
		Actor:  actor,
		Type:   workflow.TypeAssignment,
		ID:     id,
		Action: lifecycle.ActionEdit,
		Target: target,
	}); err != nil {
		return Assignment{}, err
	}
	return s.assignments.GetAssignment(ctx, id)
}
