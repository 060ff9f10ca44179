package brands

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
	brands map[int64]Brand
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{brands: make(map[int64]Brand)}
}

func (r *memoryRepo) Create(_ context.Context, brand Brand) (Brand, error) {
	r.nextID++
	brand.ID = r.nextID
	r.brands[brand.ID] = brand
	return brand, nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Brand, error) {
	brand, ok := r.brands[id]
	if !ok {
		return Brand{}, ErrNotFound
	}
	return brand, nil
}

func (r *memoryRepo) List(_ context.Context) ([]Brand, error) {
	out := make([]Brand, 0, len(r.brands))
	for _, b := range r.brands {
		out = append(out, b)
	}
	return out, nil
}

func (r *memoryRepo) GetSnapshot(_ context.Context, id int64) (lifecycle.Snapshot, error) {
	brand, ok := r.brands[id]
	if !ok {
		return lifecycle.Snapshot{}, workflow.ErrNotFound
	}
	return lifecycle.Snapshot{State: brand.Stage}, nil
}

func (r *memoryRepo) CompareAndSetState(_ context.Context, id int64, expected, next lifecycle.State, _ workflow.Companion) error {
	brand, ok := r.brands[id]
	if !ok {
		return workflow.ErrNotFound
	}
	if brand.Stage != expected {
		return workflow.ErrConflict
	}
	brand.Stage = next
	r.brands[id] = brand
	return nil
}

func newTestService(repo *memoryRepo) *Service {
	gate := policy.NewGate(policy.NewStore(noOverrides{}), audit.NopRecorder{}, nil)
	wf := workflow.NewService(gate, audit.NopRecorder{}, nil, nil).
		Register(workflow.TypeBrand, lifecycle.Brand(), repo)
	return NewService(repo, wf)
}

func TestCreateStartsAtLead(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo())

	brand, err := svc.Create(ctx, "  Acme Cosmetics  ", "jo@acme.example")
	require.NoError(t, err)
	require.Equal(t, "Acme Cosmetics", brand.Name)
	require.Equal(t, lifecycle.BrandLead, brand.Stage)

	_, err = svc.Create(ctx, "   ", "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestChangeStageNormalizesAndValidates(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)
	manager := policy.Actor{ID: 5, Role: policy.RoleManager}

	brand, err := svc.Create(ctx, "Acme", "")
	require.NoError(t, err)

	// Lowercase input is accepted and stored uppercase.
	updated, err := svc.ChangeStage(ctx, manager, brand.ID, "  negotiation ")
	require.NoError(t, err)
	require.Equal(t, lifecycle.BrandNegotiation, updated.Stage)

	// Custom tags pass shape validation.
	updated, err = svc.ChangeStage(ctx, manager, brand.ID, "PAUSED_Q3")
	require.NoError(t, err)
	require.Equal(t, lifecycle.State("PAUSED_Q3"), updated.Stage)

	// Malformed tags are illegal transitions.
	_, err = svc.ChangeStage(ctx, manager, brand.ID, "99 problems")
	require.ErrorIs(t, err, workflow.ErrIllegal)

	// Staff holds brand:view only; stage changes need brand:edit.
	_, err = svc.ChangeStage(ctx, policy.Actor{ID: 9, Role: policy.RoleStaff}, brand.ID, "CLOSED")
	require.ErrorIs(t, err, workflow.ErrDenied)

	_, err = svc.ChangeStage(ctx, manager, 404, "CLOSED")
	require.ErrorIs(t, err, workflow.ErrNotFound)
}
