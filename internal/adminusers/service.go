package adminusers

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/policy"
	"github.com/amplio-agency/amplio/internal/workflow"
)

// RepositoryPort describes admin user persistence used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, user AdminUser) (AdminUser, error)
	Get(ctx context.Context, id int64) (AdminUser, error)
	List(ctx context.Context) ([]AdminUser, error)
}

// Service handles admin user business logic.
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
	Email    string
	Name     string
	Role     string
	Password string
}

// Create registers a new console operator with a hashed password.
func (s *Service) Create(ctx context.Context, input CreateInput) (AdminUser, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return AdminUser{}, fmt.Errorf("%w: email required", ErrValidation)
	}
	role, err := policy.ParseRole(input.Role)
	if err != nil {
		return AdminUser{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if len(input.Password) < 8 {
		return AdminUser{}, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return AdminUser{}, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Create(ctx, AdminUser{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
		PasswordHash: string(hash),
		Status:       lifecycle.AdminUserActive,
	})
}

// Get returns one admin user.
func (s *Service) Get(ctx context.Context, id int64) (AdminUser, error) {
	return s.repo.Get(ctx, id)
}

// List returns all admin users.
func (s *Service) List(ctx context.Context) ([]AdminUser, error) {
	return s.repo.List(ctx)
}

// Delete soft-deletes the operator. The workflow rejects self-deletion
// before any permission or state check.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	_, err := s.wf.Apply(ctx, workflow.Request{
		Actor:  actor,
		Type:   workflow.TypeAdminUser,
		ID:     id,
		Action: lifecycle.ActionDelete,
		Target: lifecycle.AdminUserDeleted,
	})
	return err
}
