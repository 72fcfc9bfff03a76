// internal/domain/models/submission.go
package models

import "time"

// Submission statuses
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// AllSubmissionStatuses returns all valid submission statuses.
func AllSubmissionStatuses() []string {
	return []string{
		SubmissionPending,
		SubmissionApproved,
		SubmissionRejected,
	}
}

// IsValidSubmissionStatus checks if a status is valid.
func IsValidSubmissionStatus(status string) bool {
	for _, s := range AllSubmissionStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// Submission is a tool proposed by an anonymous visitor, awaiting an admin decision.
// Approved and rejected are terminal.
type Submission struct {
	ID         int64 `bson:"_id" json:"id"`
	ToolFields `bson:",inline"`

	Status      string     `bson:"status" json:"status"`
	SubmittedAt time.Time  `bson:"submitted_at" json:"submitted_at"`
	DecidedAt   *time.Time `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
	ToolID      *int64     `bson:"tool_id,omitempty" json:"tool_id,omitempty"` // set when approved
}
