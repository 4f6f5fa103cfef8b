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

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	coll *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{coll: db.Collection(commentsCollection)}
}

func (r *CommentRepository) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	res, err := r.coll.InsertOne(ctx, comment)
	if err != nil {
		return types.Comment{}, translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		comment.ID = id
	}
	return comment, nil
}

func (r *CommentRepository) Get(ctx context.Context, id primitive.ObjectID) (types.Comment, error) {
	var comment types.Comment
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&comment); err != nil {
		return types.Comment{}, translate(err)
	}
	return comment, nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]types.Comment, error) {
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "postId", Value: postID}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var comments []types.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
