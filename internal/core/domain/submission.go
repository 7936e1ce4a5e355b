package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SubmissionStatus is a custom type for our status ENUM
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed out of s.
func (s SubmissionStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether s is one of the known statuses.
func (s SubmissionStatus) Valid() bool {
	return s == StatusPending || s.IsTerminal()
}

// Submission is one tree-planting claim.
type Submission struct {
	ID            int64
	SubmitterID   int64  // Telegram user ID
	SubmitterName string // Encrypted at rest
	Species       string
	Latitude      float64
	Longitude     float64
	Status        SubmissionStatus
	CreatedAt     time.Time
	DecidedAt     *time.Time // Nullable
}

// NewSubmission holds the validated fields the store needs to create a row.
// The store assigns ID, Status and timestamps.
type NewSubmission struct {
	SubmitterID   int64
	SubmitterName string
	Species       string
	Latitude      float64
	Longitude     float64
}

// Decision is the reviewer's verdict on a submission.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// TargetStatus maps a decision to the terminal status it produces.
func (d Decision) TargetStatus() (SubmissionStatus, error) {
	switch d {
	case DecisionApprove:
		return StatusApproved, nil
	case DecisionReject:
		return StatusRejected, nil
	}
	return "", fmt.Errorf("unknown decision %q", string(d))
}

// ActionToken builds the callback payload carried by a review card button,
// e.g. "approve:42".
func ActionToken(d Decision, submissionID int64) string {
	return string(d) + ":" + strconv.FormatInt(submissionID, 10)
}

// ParseActionToken is the inverse of ActionToken.
func ParseActionToken(data string) (Decision, int64, error) {
	action, rawID, ok := strings.Cut(data, ":")
	if !ok {
		return "", 0, fmt.Errorf("malformed action token %q", data)
	}

	d := Decision(action)
	if _, err := d.TargetStatus(); err != nil {
		return "", 0, err
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("malformed submission id in action token %q", data)
	}
	return d, id, nil
}
