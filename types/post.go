package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a forum thread opener.
type Post struct {
	// ID is the document identifier assigned by the store.
	ID primitive.ObjectID `json:"_id" bson:"_id,omitempty"`

	// AuthorName is the display name of the author at creation time.
	AuthorName string `json:"authorName" bson:"authorName"`

	// AuthorEmail is the owning identity. Only this identity may delete the post.
	AuthorEmail string `json:"authorEmail" bson:"authorEmail"`

	// AuthorImage is the author's avatar URL.
	AuthorImage string `json:"authorImage,omitempty" bson:"authorImage,omitempty"`

	// Title is the post headline.
	Title string `json:"title" bson:"title"`

	// Description is the post body.
	Description string `json:"description" bson:"description"`

	// Tag is the single topic label used by tag search.
	Tag string `json:"tag" bson:"tag"`

	// UpVote counts up votes. It is only ever incremented.
	UpVote int `json:"upVote" bson:"upVote"`

	// DownVote counts down votes. It is only ever incremented.
	DownVote int `json:"downVote" bson:"downVote"`

	// VoteDifference is UpVote minus DownVote, populated only by the
	// popularity listing.
	VoteDifference *int `json:"voteDifference,omitempty" bson:"voteDifference,omitempty"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Post list orderings.
const (
	SortPopularity = "popularity"
	SortDate       = "date"
)

// Vote directions accepted by the vote endpoint.
const (
	VoteUp   = "up"
	VoteDown = "down"
)
