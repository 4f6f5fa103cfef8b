package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportStatusResolved is the only terminal report status. A report with any
// other status, or none, is open.
const ReportStatusResolved = "resolved"

// Report flags a comment for moderator review. At most one report exists per comment.
type Report struct {
	// ID is the document identifier assigned by the store.
	ID primitive.ObjectID `json:"_id" bson:"_id,omitempty"`

	// CommentID references the reported comment by its hex identifier.
	CommentID string `json:"commentId" bson:"commentId"`

	// CommentText is a copy of the comment at report time.
	CommentText string `json:"commentText,omitempty" bson:"commentText,omitempty"`

	// CommenterEmail identifies the author of the reported comment, the
	// target of "warn" and "block".
	CommenterEmail string `json:"commenterEmail,omitempty" bson:"commenterEmail,omitempty"`

	// ReporterEmail identifies who filed the report, when known.
	ReporterEmail string `json:"reporterEmail,omitempty" bson:"reporterEmail,omitempty"`

	// Feedback is the reporter's reason.
	Feedback string `json:"feedback,omitempty" bson:"feedback,omitempty"`

	// Status is empty while open and "resolved" once ignored.
	Status string `json:"status,omitempty" bson:"status,omitempty"`

	// CreatedAt is the submission timestamp.
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Open reports whether the report still awaits a decision.
func (r Report) Open() bool {
	return r.Status != ReportStatusResolved
}

// ModerationAction is the tag dispatched by the report action endpoint.
type ModerationAction string

// Supported moderation actions. Any other tag is accepted and ignored.
const (
	ActionIgnore        ModerationAction = "ignore"
	ActionWarn          ModerationAction = "warn"
	ActionDeleteComment ModerationAction = "delete-comment"
	ActionBlock         ModerationAction = "block"
)

// Known reports whether the action has an effect.
func (a ModerationAction) Known() bool {
	switch a {
	case ActionIgnore, ActionWarn, ActionDeleteComment, ActionBlock:
		return true
	default:
		return false
	}
}
