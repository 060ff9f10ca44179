package campaigns

import (
	"context"
	"fmt"
	"strings"

	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/policy"
	"github.com/amplio-agency/amplio/internal/workflow"
)

// RepositoryPort describes campaign persistence used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, campaign Campaign) (Campaign, error)
	Get(ctx context.Context, id int64) (Campaign, error)
	List(ctx context.Context) ([]Campaign, error)
}

// Service handles campaign business logic.
type Service struct {
	repo RepositoryPort
	wf   *workflow.Service
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, wf *workflow.Service) *Service {
	return &Service{repo: repo, wf: wf}
}

// CreateInput describes creation payload.
type CreateInput struct {
	BrandID     int64
	Name        string
	BudgetCents int64
	Currency    string
}

// Create inserts a new campaign in DRAFT, unapproved.
func (s *Service) Create(ctx context.Context, input CreateInput) (Campaign, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Campaign{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	if input.BrandID == 0 {
		return Campaign{}, fmt.Errorf("%w: brand required", ErrValidation)
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	return s.repo.Create(ctx, Campaign{
		BrandID:     input.BrandID,
		Name:        input.Name,
		BudgetCents: input.BudgetCents,
		Currency:    input.Currency,
		Status:      lifecycle.CampaignDraft,
	})
}

// Get returns one campaign.
func (s *Service) Get(ctx context.Context, id int64) (Campaign, error) {
	return s.repo.Get(ctx, id)
}

// List returns all campaigns.
func (s *Service) List(ctx context.Context) ([]Campaign, error) {
	return s.repo.List(ctx)
}

// Approve activates the campaign, flipping the approved flag atomically with
// the status. Requires the dedicated approve permission.
func (s *Service) Approve(ctx context.Context, actor policy.Actor, id int64) (Campaign, error) {
	if _, err := s.wf.Apply(ctx, workflow.Request{
		Actor:  actor,
		Type:   workflow.TypeCampaign,
		ID:     id,
		Action: lifecycle.ActionApprove,
		Target: lifecycle.CampaignActive,
	}); err != nil {
		return Campaign{}, err
	}
	return s.repo.Get(ctx, id)
}

// SetStatus moves the status through the generic edit action; the approved
// flag is never touched on this path.
func (s *Service) SetStatus(ctx context.Context, actor policy.Actor, id int64, status string) (Campaign, error) {
	target := lifecycle.State(strings.ToUpper(strings.TrimSpace(status)))
	if _, err := s.wf.Apply(ctx, workflow.Request{
		Actor:  actor,
		Type:   workflow.TypeCampaign,
		ID:     id,
		Action: lifecycle.ActionEdit,
		Target: target,
	}); err != nil {
		return Campaign{}, err
	}
	return s.repo.Get(ctx, id)
}
