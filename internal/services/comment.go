package services

import (
	"context"
	"strings"
	"time"

	"github.com/forumhub/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
	Get(ctx context.Context, id primitive.ObjectID) (types.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]types.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CommentService struct {
	repo CommentRepository
	now  func() time.Time
}

func NewCommentService(repo CommentRepository) *CommentService {
	return &CommentService{repo: repo, now: time.Now}
}

func (s *CommentService) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	if strings.TrimSpace(comment.PostID) == "" {
		return types.Comment{}, invalid("postId", "is required")
	}
	if strings.TrimSpace(comment.Text) == "" {
		return types.Comment{}, invalid("text", "is required")
	}
	comment.ID = primitive.NilObjectID
	comment.CreatedAt = s.now()
	return s.repo.Create(ctx, comment)
}

// ListByPost returns a post's comments, oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]types.Comment, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, invalid("postId", "is required")
	}
	return s.repo.ListByPost(ctx, postID)
}
