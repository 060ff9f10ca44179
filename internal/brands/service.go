package brands

import (
	"context"
	"fmt"
	"strings"

	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/policy"
	"github.com/amplio-agency/amplio/internal/workflow"
)

// RepositoryPort describes brand persistence used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, brand Brand) (Brand, error)
	Get(ctx context.Context, id int64) (Brand, error)
	List(ctx context.Context) ([]Brand, error)
}

// Service handles brand business logic.
type Service struct {
	repo RepositoryPort
	wf   *workflow.Service
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, wf *workflow.Service) *Service {
	return &Service{repo: repo, wf: wf}
}

// Create inserts a new brand starting at LEAD.
func (s *Service) Create(ctx context.Context, name, contact string) (Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Brand{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	return s.repo.Create(ctx, Brand{Name: name, Contact: strings.TrimSpace(contact), Stage: lifecycle.BrandLead})
}

// Get returns one brand.
func (s *Service) Get(ctx context.Context, id int64) (Brand, error) {
	return s.repo.Get(ctx, id)
}

// List returns all brands.
func (s *Service) List(ctx context.Context) ([]Brand, error) {
	return s.repo.List(ctx)
}

// ChangeStage moves the brand through the pipeline. The stage graph is open;
// legality and permission run through the workflow gate.
func (s *Service) ChangeStage(ctx context.Context, actor policy.Actor, id int64, stage string) (Brand, error) {
	target := lifecycle.State(strings.ToUpper(strings.TrimSpace(stage)))
	if _, err := s.wf.Apply(ctx, workflow.Request{
		Actor:  actor,
		Type:   workflow.TypeBrand,
		ID:     id,
		Action: lifecycle.ActionStage,
		Target: target,
	}); err != nil {
		return Brand{}, err
	}
	return s.repo.Get(ctx, id)
}
