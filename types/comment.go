package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a reply attached to a post. Comments are only removed by
// the "delete-comment" moderation action.
type Comment struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	PostID         string             `json:"postId" bson:"postId"`
	PostTitle      string             `json:"postTitle,omitempty" bson:"postTitle,omitempty"`
	CommenterName  string             `json:"commenterName,omitempty" bson:"commenterName,omitempty"`
	CommenterEmail string             `json:"commenterEmail,omitempty" bson:"commenterEmail,omitempty"`
	Text           string             `json:"text" bson:"text"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}
