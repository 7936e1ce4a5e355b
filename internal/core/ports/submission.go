package ports

import (
	"GreenPay/internal/core/domain"
	"context"
)

// SubmissionRepository defines the persistence operations for Submissions.
// It is the only owner of submission identity and status.
type SubmissionRepository interface {
	// Create saves a new pending submission and returns the stored row.
	Create(ctx context.Context, sub domain.NewSubmission) (*domain.Submission, error)

	// GetByID returns domain.ErrNotFound when the id does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Submission, error)

	// SetStatus moves a pending submission to a terminal status in one
	// atomic step. It returns domain.ErrNotFound or domain.ErrInvalidTransition.
	SetStatus(ctx context.Context, id int64, status domain.SubmissionStatus) (*domain.Submission, error)

	// ListByStatus returns up to limit submissions, oldest first.
	ListByStatus(ctx context.Context, status domain.SubmissionStatus, limit int) ([]*domain.Submission, error)

	// ListBySubmitter returns up to limit submissions of one user, newest first.
	ListBySubmitter(ctx context.Context, submitterID int64, limit int) ([]*domain.Submission, error)
}

// SubmissionService is the intake side of the workflow.
type SubmissionService interface {
	// SubmitPayload parses a raw Mini App payload and submits it.
	SubmitPayload(ctx context.Context, submitter domain.Submitter, raw []byte) (*domain.Submission, error)

	// Submit validates and persists a typed submission event.
	Submit(ctx context.Context, event domain.SubmissionEvent) (*domain.Submission, error)

	// History lists a submitter's own submissions.
	History(ctx context.Context, submitterID int64, limit int) ([]*domain.Submission, error)
}

// ModerationService applies reviewer decisions.
type ModerationService interface {
	Decide(ctx context.Context, event domain.DecisionEvent) (*domain.Submission, error)

	// Pending lists the review queue. Only the reviewer may call it.
	Pending(ctx context.Context, reviewerID int64, limit int) ([]*domain.Submission, error)
}
