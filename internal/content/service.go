package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/policy"
	"github.com/amplio-agency/amplio/internal/workflow"
)

// RepositoryPort describes submission persistence used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, submission Submission) (Submission, error)
	Get(ctx context.Context, id int64) (Submission, error)
	List(ctx context.Context, assignmentID int64) ([]Submission, error)
}

// Service handles content submission business logic.
type Service struct {
	repo RepositoryPort
	wf   *workflow.Service
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, wf *workflow.Service) *Service {
	return &Service{repo: repo, wf: wf}
}

// Create inserts a new submission in PENDING.
func (s *Service) Create(ctx context.Context, assignmentID int64, url string) (Submission, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Submission{}, fmt.Errorf("%w: url required", ErrValidation)
	}
	if assignmentID == 0 {
		return Submission{}, fmt.Errorf("%w: assignment required", ErrValidation)
	}
	return s.repo.Create(ctx, Submission{
		AssignmentID: assignmentID,
		URL:          url,
		Status:       lifecycle.SubmissionPending,
	})
}

// Get returns one submission.
func (s *Service) Get(ctx context.Context, id int64) (Submission, error) {
	return s.repo.Get(ctx, id)
}

// List returns submissions, optionally filtered by assignment.
func (s *Service) List(ctx context.Context, assignmentID int64) ([]Submission, error) {
	return s.repo.List(ctx, assignmentID)
}

// Review settles the submission as APPROVED or REJECTED. Feedback, when
// given, is written atomically with the verdict.
func (s *Service) Review(ctx context.Context, actor policy.Actor, id int64, verdict, feedback string) (Submission, error) {
	target := lifecycle.State(strings.ToUpper(strings.TrimSpace(verdict)))
	if _, err := s.wf.Apply(ctx, workflow.Request{
		Actor:    actor,
		Type:     workflow.TypeSubmission,
		ID:       id,
		Action:   lifecycle.ActionReview,
		Target:   target,
		Feedback: strings.TrimSpace(feedback),
	}); err != nil {
		return Submission{}, err
	}
	return s.repo.Get(ctx, id)
}
