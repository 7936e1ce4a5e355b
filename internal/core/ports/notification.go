package ports

import (
	"GreenPay/internal/core/domain"
	"context"
)

// NotificationGateway is the outbound channel the core talks through.
// Every call is best-effort from the core's point of view: a failure is
// logged and never undoes a stored status.
type NotificationGateway interface {
	// RequestReview sends the review card and returns a reference to it.
	RequestReview(ctx context.Context, event domain.ReviewRequested) (domain.MessageRef, error)
	Acknowledge(ctx context.Context, event domain.SubmissionAcknowledged) error
	RejectSubmission(ctx context.Context, event domain.SubmissionRejected) error
	NotifyDecision(ctx context.Context, event domain.DecisionNotification) error
	UpdateReviewCard(ctx context.Context, event domain.ReviewCardUpdate) error
}
