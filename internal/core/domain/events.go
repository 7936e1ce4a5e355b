package domain

// --- Inbound events ---

// Submitter identifies the Telegram user behind an inbound event.
type Submitter struct {
	ID       int64
	FullName string
}

// SubmissionEvent is the strictly-typed form of a Mini App submission.
type SubmissionEvent struct {
	Submitter    Submitter
	Species      string
	Latitude     float64
	Longitude    float64
	PhotoPayload string // data URL or bare base64
}

// MessageRef points at a message previously sent through the gateway.
type MessageRef struct {
	ChatID    int64
	MessageID int
	Caption   string // Caption as currently shown, used for verbatim append
}

// DecisionEvent is a reviewer's button press.
type DecisionEvent struct {
	SubmissionID int64
	Decision     Decision
	ReviewerID   int64
	Card         MessageRef
}

// --- Outbound events ---

// Action is a button on a review card.
type Action struct {
	Label string
	Token string
}

// ReviewRequested pushes a new review card to the reviewer.
type ReviewRequested struct {
	ReviewerChatID int64
	SubmissionID   int64
	Photo          []byte
	Caption        string
	Actions        []Action
}

// SubmissionAcknowledged confirms receipt to the submitter.
type SubmissionAcknowledged struct {
	SubmitterID  int64
	SubmissionID int64
	Text         string
}

// SubmissionRejected tells the submitter their input was not accepted.
type SubmissionRejected struct {
	SubmitterID int64
	Field       string
	Text        string
}

// DecisionNotification tells the submitter the review outcome.
type DecisionNotification struct {
	SubmitterID  int64
	SubmissionID int64
	Decision     Decision
	Text         string
}

// ReviewCardUpdate marks the reviewer's card as decided.
type ReviewCardUpdate struct {
	Card         MessageRef
	AppendedText string
}

// --- Bus topics for domain events ---

const (
	TopicSubmissionCreated  = "submission:created"
	TopicSubmissionRejected = "submission:rejected"
	TopicSubmissionDecided  = "submission:decided"
	TopicDecisionConflict   = "submission:decision_conflict"
	TopicNotificationFailed = "notification:failed"
)

// NotificationFailure is published when a best-effort gateway call fails.
type NotificationFailure struct {
	Kind         string // e.g. "review_request", "decision"
	SubmissionID int64
	Err          error
}
