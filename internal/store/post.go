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

// PostRepository handles persistence for posts.
type PostRepository struct {
	coll *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{coll: db.Collection(postsCollection)}
}

// List returns a page of posts. Popularity ordering is computed by the
// aggregation pipeline from the vote counters.
func (r *PostRepository) List(ctx context.Context, sort string, offset, limit int) ([]types.Post, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 5
	}

	var (
		cursor *mongo.Cursor
		err    error
	)
	switch sort {
	case types.SortPopularity:
		pipeline := mongo.Pipeline{
			{{Key: "$addFields", Value: bson.D{
				{Key: "voteDifference", Value: bson.D{{Key: "$subtract", Value: bson.A{"$upVote", "$downVote"}}}},
			}}},
			{{Key: "$sort", Value: bson.D{{Key: "voteDifference", Value: -1}, {Key: "createdAt", Value: -1}}}},
			{{Key: "$skip", Value: int64(offset)}},
			{{Key: "$limit", Value: int64(limit)}},
		}
		cursor, err = r.coll.Aggregate(ctx, pipeline)
	case types.SortDate:
		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64(offset)).
			SetLimit(int64(limit))
		cursor, err = r.coll.Find(ctx, bson.D{}, opts)
	default:
		opts := options.Find().SetSkip(int64(offset)).SetLimit(int64(limit))
		cursor, err = r.coll.Find(ctx, bson.D{}, opts)
	}
	if err != nil {
		return nil, err
	}

	posts := make([]types.Post, 0, limit)
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}

// SearchByTag matches posts whose tag contains the term, ignoring case.
func (r *PostRepository) SearchByTag(ctx context.Context, tag string) ([]types.Post, error) {
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "tag", Value: containsInsensitive(tag)}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	var posts []types.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) Get(ctx context.Context, id primitive.ObjectID) (types.Post, error) {
	var post types.Post
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&post); err != nil {
		return types.Post{}, translate(err)
	}
	return post, nil
}

func (r *PostRepository) ListByAuthor(ctx context.Context, email string, offset, limit int) ([]types.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "authorEmail", Value: email}}, opts)
	if err != nil {
		return nil, err
	}

	posts := make([]types.Post, 0, limit)
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) CountByAuthor(ctx context.Context, email string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{{Key: "authorEmail", Value: email}})
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.VoteDifference = nil

	res, err := r.coll.InsertOne(ctx, post)
	if err != nil {
		return types.Post{}, translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		post.ID = id
	}
	return post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Vote increments exactly one of the vote counters by one.
func (r *PostRepository) Vote(ctx context.Context, id primitive.ObjectID, direction string) error {
	field := "upVote"
	if direction == types.VoteDown {
		field = "downVote"
	}

	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{
		{Key: "$inc", Value: bson.D{{Key: field, Value: 1}}},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
