package influencers

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
	influencers map[int64]Influencer
	nextID      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{influencers: make(map[int64]Influencer)}
}

func (r *memoryRepo) Create(_ context.Context, influencer Influencer) (Influencer, error) {
	r.nextID++
	influencer.ID = r.nextID
	r.influencers[influencer.ID] = influencer
	return influencer, nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Influencer, error) {
	influencer, ok := r.influencers[id]
	if !ok {
		return Influencer{}, ErrNotFound
	}
	return influencer, nil
}

func (r *memoryRepo) List(_ context.Context) ([]Influencer, error) {
	out := make([]Influencer, 0, len(r.influencers))
	for _, i := range r.influencers {
		out = append(out, i)
	}
	return out, nil
}

func (r *memoryRepo) GetSnapshot(_ context.Context, id int64) (lifecycle.Snapshot, error) {
	influencer, ok := r.influencers[id]
	if !ok {
		return lifecycle.Snapshot{}, workflow.ErrNotFound
	}
	return lifecycle.Snapshot{State: influencer.Status}, nil
}

func (r *memoryRepo) CompareAndSetState(_ context.Context, id int64, expected, next lifecycle.State, _ workflow.Companion) error {
	influencer, ok := r.influencers[id]
	if !ok {
		return workflow.ErrNotFound
	}
	if influencer.Status != expected {
		return workflow.ErrConflict
	}
	influencer.Status = next
	r.influencers[id] = influencer
	return nil
}

type memoryAssignments struct {
	assignments map[int64]Assignment
	nextID      int64
}

func newMemoryAssignments() *memoryAssignments {
	return &memoryAssignments{assignments: make(map[int64]Assignment)}
}

func (r *memoryAssignments) CreateAssignment(_ context.Context, assignment Assignment) (Assignment, error) {
	r.nextID++
	assignment.ID = r.nextID
	r.assignments[assignment.ID] = assignment
	return assignment, nil
}

func (r *memoryAssignments) GetAssignment(_ context.Context, id int64) (Assignment, error) {
	assignment, ok := r.assignments[id]
	if !ok {
		return Assignment{}, ErrNotFound
	}
	return assignment, nil
}

func (r *memoryAssignments) ListAssignments(_ context.Context, campaignID int64) ([]Assignment, error) {
	var out []Assignment
	for _, a := range r.assignments {
		if campaignID == 0 || a.CampaignID == campaignID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryAssignments) GetSnapshot(_ context.Context, id int64) (lifecycle.Snapshot, error) {
	assignment, ok := r.assignments[id]
	if !ok {
		return lifecycle.Snapshot{}, workflow.ErrNotFound
	}
	return lifecycle.Snapshot{State: assignment.Status}, nil
}

func (r *memoryAssignments) CompareAndSetState(_ context.Context, id int64, expected, next lifecycle.State, _ workflow.Companion) error {
	assignment, ok := r.assignments[id]
	if !ok {
		return workflow.ErrNotFound
	}
	if assignment.Status != expected {
		return workflow.ErrConflict
	}
	assignment.Status = next
	r.assignments[id] = assignment
	return nil
}

func newTestService(repo *memoryRepo, assignments *memoryAssignments) *Service {
	gate := policy.NewGate(policy.NewStore(noOverrides{}), audit.NopRecorder{}, nil)
	wf := workflow.NewService(gate, audit.NopRecorder{}, nil, nil).
		Register(workflow.TypeInfluencer, lifecycle.Influencer(), repo).
		Register(workflow.TypeAssignment, lifecycle.Assignment(), assignments)
	return NewService(repo, assignments, wf)
}

func TestAssignRequiresApprovedInfluencer(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo, newMemoryAssignments())
	root := policy.Actor{ID: 1, Role: policy.RoleSuperAdmin}

	influencer, err := svc.Create(ctx, "@glowmaven", "instagram", 150000)
	require.NoError(t, err)
	require.Equal(t, lifecycle.InfluencerPending, influencer.Status)

	_, err = svc.Assign(ctx, 1, influencer.ID)
	require.ErrorIs(t, err, ErrNotApproved)

	approved, err := svc.Approve(ctx, root, influencer.ID)
	require.NoError(t, err)
	require.Equal(t, lifecycle.InfluencerApproved, approved.Status)

	assignment, err := svc.Assign(ctx, 1, influencer.ID)
	require.NoError(t, err)
	require.Equal(t, lifecycle.AssignmentAssigned, assignment.Status)

	// Vetting is one-way; approving twice is illegal.
	_, err = svc.Approve(ctx, root, influencer.ID)
	require.ErrorIs(t, err, workflow.ErrIllegal)
}

func TestSetAssignmentStatusForwardOnly(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	assignments := newMemoryAssignments()
	svc := newTestService(repo, assignments)
	manager := policy.Actor{ID: 5, Role: policy.RoleManager}

	influencer, err := svc.Create(ctx, "@glowmaven", "instagram", 150000)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, policy.Actor{ID: 1, Role: policy.RoleSuperAdmin}, influencer.ID)
	require.NoError(t, err)
	assignment, err := svc.Assign(ctx, 1, influencer.ID)
	require.NoError(t, err)

	updated, err := svc.SetAssignmentStatus(ctx, manager, assignment.ID, "content_submitted")
	require.NoError(t, err)
	require.Equal(t, lifecycle.AssignmentSubmitted, updated.Status)

	// No regression, no skipping.
	_, err = svc.SetAssignmentStatus(ctx, manager, assignment.ID, "ASSIGNED")
	require.ErrorIs(t, err, workflow.ErrIllegal)
	_, err = svc.SetAssignmentStatus(ctx, manager, assignment.ID, "POSTED")
	require.ErrorIs(t, err, workflow.ErrIllegal)

	// Staff may view assignments but not move them.
	_, err = svc.SetAssignmentStatus(ctx, policy.Actor{ID: 9, Role: policy.RoleStaff}, assignment.ID, "APPROVED")
	require.ErrorIs(t, err, workflow.ErrDenied)
}
