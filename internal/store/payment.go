package store

import (
	"context"
	"time"

	"github.com/forumhub/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PaymentRepository handles persistence for membership payments.
type PaymentRepository struct {
	coll *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{coll: db.Collection(paymentsCollection)}
}

func (r *PaymentRepository) Create(ctx context.Context, payment types.Payment) (types.Payment, error) {
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}

	res, err := r.coll.InsertOne(ctx, payment)
	if err != nil {
		return types.Payment{}, translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		payment.ID = id
	}
	return payment, nil
}
