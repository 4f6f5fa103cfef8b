package store

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names shared with the migrations.
const (
	usersCollection    = "users"
	postsCollection    = "posts"
	commentsCollection = "comments"
	reportsCollection  = "reports"
	paymentsCollection = "payments"
)

// ParseID converts a hex string into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

func containsInsensitive(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}
