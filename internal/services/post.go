package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/forumhub/apiserver/internal/logging"
	"github.com/forumhub/apiserver/internal/store"
	"github.com/forumhub/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	List(ctx context.Context, sort string, offset, limit int) ([]types.Post, error)
	Count(ctx context.Context) (int64, error)
	SearchByTag(ctx context.Context, tag string) ([]types.Post, error)
	Get(ctx context.Context, id primitive.ObjectID) (types.Post, error)
	ListByAuthor(ctx context.Context, email string, offset, limit int) ([]types.Post, error)
	CountByAuthor(ctx context.Context, email string) (int64, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Vote(ctx context.Context, id primitive.ObjectID, direction string) error
}

// QuotaUsers is the slice of the user store the post allowance touches.
type QuotaUsers interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
	IncPostLimit(ctx context.Context, email string, delta int) error
}

// PostService encapsulates post use-cases, including the per-tier post quota.
type PostService struct {
	posts PostRepository
	users QuotaUsers
	log   logging.Logger
	now   func() time.Time
}

func NewPostService(posts PostRepository, users QuotaUsers, log logging.Logger) *PostService {
	if log == nil {
		log = logging.Nop()
	}
	return &PostService{posts: posts, users: users, log: log, now: time.Now}
}

// List returns a page of posts. Unknown sort keys fall back to insertion order.
func (s *PostService) List(ctx context.Context, sort string, offset, limit int) ([]types.Post, error) {
	return s.posts.List(ctx, sort, offset, limit)
}

func (s *PostService) Count(ctx context.Context) (int64, error) {
	return s.posts.Count(ctx)
}

func (s *PostService) SearchByTag(ctx context.Context, tag string) ([]types.Post, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, invalid("tag", "is required")
	}
	return s.posts.SearchByTag(ctx, tag)
}

func (s *PostService) Get(ctx context.Context, id string) (types.Post, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return types.Post{}, invalid("id", "is not a valid identifier")
	}
	return s.posts.Get(ctx, oid)
}

// Vote increments the up or down counter. Votes are not tied to a voter.
func (s *PostService) Vote(ctx context.Context, id, direction string) error {
	if direction != types.VoteUp && direction != types.VoteDown {
		return invalid("direction", `must be "up" or "down"`)
	}
	oid, err := store.ParseID(id)
	if err != nil {
		return invalid("id", "is not a valid identifier")
	}
	return s.posts.Vote(ctx, oid, direction)
}

// ListByAuthor returns the author's posts; only the author may list them.
func (s *PostService) ListByAuthor(ctx context.Context, actor, email string, offset, limit int) ([]types.Post, error) {
	if err := requireOwner(actor, email); err != nil {
		return nil, err
	}
	return s.posts.ListByAuthor(ctx, email, offset, limit)
}

func (s *PostService) CountByAuthor(ctx context.Context, actor, email string) (int64, error) {
	if err := requireOwner(actor, email); err != nil {
		return 0, err
	}
	return s.posts.CountByAuthor(ctx, email)
}

// Create inserts a post on behalf of actor, who must be the declared author.
//
// The author's outstanding posts are counted first and the insert is
// rejected with ErrQuotaExceeded when the count is already above the tier
// ceiling. The advisory allowance is decremented after the insert; if that
// update fails the post stays committed and is returned with the error.
func (s *PostService) Create(ctx context.Context, actor string, post types.Post) (types.Post, error) {
	if err := requireOwner(actor, post.AuthorEmail); err != nil {
		return types.Post{}, err
	}
	if strings.TrimSpace(post.Title) == "" {
		return types.Post{}, invalid("title", "is required")
	}

	author, err := s.users.GetByEmail(ctx, post.AuthorEmail)
	if err != nil {
		return types.Post{}, fmt.Errorf("load author: %w", err)
	}
	count, err := s.posts.CountByAuthor(ctx, post.AuthorEmail)
	if err != nil {
		return types.Post{}, fmt.Errorf("count posts: %w", err)
	}
	if count > int64(types.PostCeiling(author.Membership)) {
		return types.Post{}, ErrQuotaExceeded
	}

	post.ID = primitive.NilObjectID
	post.UpVote, post.DownVote = 0, 0
	post.VoteDifference = nil
	post.CreatedAt = s.now()
	created, err := s.posts.Create(ctx, post)
	if err != nil {
		return types.Post{}, err
	}

	if err := s.users.IncPostLimit(ctx, post.AuthorEmail, -1); err != nil {
		s.log.Error(ctx, "post allowance decrement failed", "email", post.AuthorEmail, "post_id", created.ID.Hex(), "err", err)
		return created, fmt.Errorf("update post allowance: %w", err)
	}
	return created, nil
}

// Delete removes a post owned by actor and restores one unit of allowance.
// Ownership is checked against the stored author, not the request.
func (s *PostService) Delete(ctx context.Context, actor, id string) error {
	if strings.TrimSpace(actor) == "" {
		return ErrUnauthorized
	}
	oid, err := store.ParseID(id)
	if err != nil {
		return invalid("id", "is not a valid identifier")
	}

	post, err := s.posts.Get(ctx, oid)
	if err != nil {
		return err
	}
	if err := requireOwner(actor, post.AuthorEmail); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, oid); err != nil {
		return err
	}

	if err := s.users.IncPostLimit(ctx, post.AuthorEmail, 1); err != nil {
		s.log.Error(ctx, "post allowance increment failed", "email", post.AuthorEmail, "post_id", id, "err", err)
		return fmt.Errorf("update post allowance: %w", err)
	}
	return nil
}
