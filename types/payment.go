package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MembershipPostBonus is added to a user's post allowance on purchase.
const MembershipPostBonus = 5

// Payment records a completed membership purchase.
type Payment struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email         string             `json:"email" bson:"email"`
	Name          string             `json:"name,omitempty" bson:"name,omitempty"`
	TransactionID string             `json:"transactionId" bson:"transactionId"`
	Price         float64            `json:"price" bson:"price"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}
