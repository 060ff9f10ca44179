package adminusers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

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
func (noOverrides) UpsertOverride(context.Context, policy.Rule) error { return nil }

type memoryRepo struct {
	users  map[int64]AdminUser
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]AdminUser)}
}

func (r *memoryRepo) Create(_ context.Context, user AdminUser) (AdminUser, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return AdminUser{}, ErrEmailTaken
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user, nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (AdminUser, error) {
	user, ok := r.users[id]
	if !ok {
		return AdminUser{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepo) List(_ context.Context) ([]AdminUser, error) {
	out := make([]AdminUser, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

func (r *memoryRepo) GetSnapshot(_ context.Context, id int64) (lifecycle.Snapshot, error) {
	user, ok := r.users[id]
	if !ok {
		return lifecycle.Snapshot{}, workflow.ErrNotFound
	}
	return lifecycle.Snapshot{State: user.Status}, nil
}

func (r *memoryRepo) CompareAndSetState(_ context.Context, id int64, expected, next lifecycle.State, _ workflow.Companion) error {
	user, ok := r.users[id]
	if !ok {
		return workflow.ErrNotFound
	}
	if user.Status != expected {
		return workflow.ErrConflict
	}
	user.Status = next
	r.users[id] = user
	return nil
}

func newTestService(repo *memoryRepo) *Service {
	gate := policy.NewGate(policy.NewStore(noOverrides{}), audit.NopRecorder{}, nil)
	wf := workflow.NewService(gate, audit.NopRecorder{}, nil, nil).
		Register(workflow.TypeAdminUser, lifecycle.AdminUser(), repo)
	return NewService(repo, wf)
}

func TestCreateHashesPassword(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	user, err := svc.Create(ctx, CreateInput{
		Email:    " Lee@Amplio.Agency ",
		Name:     "Lee",
		Role:     "manager",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.Equal(t, "lee@amplio.agency", user.Email)
	require.Equal(t, policy.RoleManager, user.Role)
	require.Equal(t, lifecycle.AdminUserActive, user.Status)
	require.NotEqual(t, "correct horse battery", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse battery")))
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo())

	_, err := svc.Create(ctx, CreateInput{Email: "", Role: "ADMIN", Password: "longenough"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{Email: "a@b.c", Role: "wizard", Password: "longenough"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{Email: "a@b.c", Role: "ADMIN", Password: "short"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo())

	input := CreateInput{Email: "dup@amplio.agency", Name: "Dup", Role: "STAFF", Password: "longenough"}
	_, err := svc.Create(ctx, input)
	require.NoError(t, err)
	_, err = svc.Create(ctx, input)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestDeleteIsSoftAndSelfProtected(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	alpha, err := svc.Create(ctx, CreateInput{Email: "alpha@amplio.agency", Name: "Alpha", Role: "ADMIN", Password: "longenough"})
	require.NoError(t, err)
	beta, err := svc.Create(ctx, CreateInput{Email: "beta@amplio.agency", Name: "Beta", Role: "ADMIN", Password: "longenough"})
	require.NoError(t, err)

	actor := policy.Actor{ID: alpha.ID, Role: policy.RoleAdmin}

	err = svc.Delete(ctx, actor, alpha.ID)
	require.ErrorIs(t, err, workflow.ErrSelfProtection)

	require.NoError(t, svc.Delete(ctx, actor, beta.ID))

	// Soft delete: the record remains, marked DELETED.
	deleted, err := svc.Get(ctx, beta.ID)
	require.NoError(t, err)
	require.Equal(t, lifecycle.AdminUserDeleted, deleted.Status)

	// And a second delete is an illegal transition, not a repeat.
	err = svc.Delete(ctx, actor, beta.ID)
	require.ErrorIs(t, err, workflow.ErrIllegal)
}
