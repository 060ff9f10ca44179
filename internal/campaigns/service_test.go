package campaigns

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amplio-agency/amplio/internal/audit"
	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/policy"
	"github.com/amplio-agency/amplio/internal/workflow"
)

type noOverrides struct{}

func (noOverrides) GetOverride(context.Context, policy.Role, policy.Resource, policy.Action) (*policy.Rule, error) {
	return nil, nil
}
func (noOverrides) ListOverrides(context.Context) ([]policy.Rule, error) { return nil, nil }
func (noOverrides) UpsertOverride(context.Context, policy.Rule) error    { return nil }

type memoryRepo struct {
	campaigns map[int64]Campaign
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{campaigns: make(map[int64]Campaign)}
}

func (r *memoryRepo) Create(_ context.Context, campaign Campaign) (Campaign, error) {
	r.nextID++
	campaign.ID = r.nextID
	r.campaigns[campaign.ID] = campaign
	return campaign, nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Campaign, error) {
	campaign, ok := r.campaigns[id]
	if !ok {
		return Campaign{}, ErrNotFound
	}
	return campaign, nil
}

func (r *memoryRepo) List(_ context.Context) ([]Campaign, error) {
	out := make([]Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepo) GetSnapshot(_ context.Context, id int64) (lifecycle.Snapshot, error) {
	campaign, ok := r.campaigns[id]
	if !ok {
		return lifecycle.Snapshot{}, workflow.ErrNotFound
	}
	return lifecycle.Snapshot{State: campaign.Status, Approved: campaign.Approved}, nil
}

func (r *memoryRepo) CompareAndSetState(_ context.Context, id int64, expected, next lifecycle.State, companion workflow.Companion) error {
	campaign, ok := r.campaigns[id]
	if !ok {
		return workflow.ErrNotFound
	}
	if campaign.Status != expected {
		return workflow.ErrConflict
	}
	campaign.Status = next
	if companion.Approved != nil {
		campaign.Approved = *companion.Approved
	}
	r.campaigns[id] = campaign
	return nil
}

func newTestService(repo *memoryRepo) *Service {
	gate := policy.NewGate(policy.NewStore(noOverrides{}), audit.NopRecorder{}, nil)
	wf := workflow.NewService(gate, audit.NopRecorder{}, nil, nil).
		Register(workflow.TypeCampaign, lifecycle.Campaign(), repo)
	return NewService(repo, wf)
}

func TestCreateStartsDraftUnapproved(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo())

	campaign, err := svc.Create(ctx, CreateInput{BrandID: 1, Name: "  Spring Launch ", BudgetCents: 2500000})
	require.NoError(t, err)
	require.Equal(t, "Spring Launch", campaign.Name)
	require.Equal(t, "USD", campaign.Currency)
	require.Equal(t, lifecycle.CampaignDraft, campaign.Status)
	require.False(t, campaign.Approved)

	_, err = svc.Create(ctx, CreateInput{BrandID: 1, Name: "  "})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{Name: "No brand"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestApproveFlipsStatusAndFlagTogether(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)
	root := policy.Actor{ID: 1, Role: policy.RoleSuperAdmin}

	campaign, err := svc.Create(ctx, CreateInput{BrandID: 1, Name: "Spring Launch"})
	require.NoError(t, err)

	// Approval is not in the compiled defaults for any role below the top.
	_, err = svc.Approve(ctx, policy.Actor{ID: 2, Role: policy.RoleAdmin}, campaign.ID)
	require.ErrorIs(t, err, workflow.ErrDenied)

	updated, err := svc.Approve(ctx, root, campaign.ID)
	require.NoError(t, err)
	require.Equal(t, lifecycle.CampaignActive, updated.Status)
	require.True(t, updated.Approved)

	// Already active: a second approval is an illegal transition.
	_, err = svc.Approve(ctx, root, campaign.ID)
	require.ErrorIs(t, err, workflow.ErrIllegal)
}

func TestSetStatusGuardsActivationOnApproval(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)
	root := policy.Actor{ID: 1, Role: policy.RoleSuperAdmin}
	manager := policy.Actor{ID: 5, Role: policy.RoleManager}

	campaign, err := svc.Create(ctx, CreateInput{BrandID: 1, Name: "Spring Launch"})
	require.NoError(t, err)

	// Editing a draft to ACTIVE without the approval flag is blocked.
	_, err = svc.SetStatus(ctx, manager, campaign.ID, "active")
	require.ErrorIs(t, err, workflow.ErrIllegal)

	_, err = svc.Approve(ctx, root, campaign.ID)
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, manager, campaign.ID, " completed ")
	require.NoError(t, err)
	require.Equal(t, lifecycle.CampaignCompleted, updated.Status)
	require.True(t, updated.Approved)

	// COMPLETED is terminal.
	_, err = svc.SetStatus(ctx, manager, campaign.ID, "DRAFT")
	require.ErrorIs(t, err, workflow.ErrIllegal)

	_, err = svc.SetStatus(ctx, manager, 404, "COMPLETED")
	require.ErrorIs(t, err, workflow.ErrNotFound)
}
