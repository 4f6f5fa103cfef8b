package store

import (
	"context"
	"time"

	"github.com/forumhub/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (types.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D) (types.User, error) {
	var user types.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return types.User{}, translate(err)
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return types.User{}, translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return user, nil
}

func (r *UserRepository) TouchSignIn(ctx context.Context, email string, at time.Time, ip string) error {
	return r.updateByEmail(ctx, email, bson.D{
		{Key: "$set", Value: bson.D{{Key: "lastSignIn", Value: at}, {Key: "ip", Value: ip}}},
	})
}

func (r *UserRepository) IncPostLimit(ctx context.Context, email string, delta int) error {
	return r.updateByEmail(ctx, email, bson.D{
		{Key: "$inc", Value: bson.D{{Key: "postLimit", Value: delta}}},
	})
}

func (r *UserRepository) UpgradeMembership(ctx context.Context, email string, bonus int, badge string) error {
	return r.updateByEmail(ctx, email, bson.D{
		{Key: "$set", Value: bson.D{{Key: "membership", Value: types.MembershipMember}}},
		{Key: "$inc", Value: bson.D{{Key: "postLimit", Value: bonus}}},
		{Key: "$addToSet", Value: bson.D{{Key: "badges", Value: badge}}},
	})
}

func (r *UserRepository) SetWarning(ctx context.Context, email string) error {
	return r.updateByEmail(ctx, email, bson.D{
		{Key: "$set", Value: bson.D{{Key: "warning", Value: true}}},
	})
}

func (r *UserRepository) SetBlocked(ctx context.Context, email string) error {
	return r.updateByEmail(ctx, email, bson.D{
		{Key: "$set", Value: bson.D{{Key: "isBlocked", Value: true}}},
	})
}

func (r *UserRepository) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{
		{Key: "$set", Value: bson.D{{Key: "role", Value: role}}},
	})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Search matches username or email case-insensitively. An empty query lists everyone.
func (r *UserRepository) Search(ctx context.Context, query string, offset, limit int) ([]types.User, error) {
	filter := bson.D{}
	if query != "" {
		pattern := containsInsensitive(query)
		filter = bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "username", Value: pattern}},
			bson.D{{Key: "email", Value: pattern}},
		}}}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	users := make([]types.User, 0, limit)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) updateByEmail(ctx context.Context, email string, update bson.D) error {
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "email", Value: email}}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
