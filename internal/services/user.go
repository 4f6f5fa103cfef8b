package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forumhub/apiserver/internal/store"
	"github.com/forumhub/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	TouchSignIn(ctx context.Context, email string, at time.Time, ip string) error
	IncPostLimit(ctx context.Context, email string, delta int) error
	UpgradeMembership(ctx context.Context, email string, bonus int, badge string) error
	SetWarning(ctx context.Context, email string) error
	SetBlocked(ctx context.Context, email string) error
	SetRole(ctx context.Context, id primitive.ObjectID, role string) error
	Search(ctx context.Context, query string, offset, limit int) ([]types.User, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
	now  func() time.Time
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

// CheckUsername reports whether the username is already taken.
func (s *UserService) CheckUsername(ctx context.Context, username string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, invalid("username", "is required")
	}
	_, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Register signs a user in. A known email only has its sign-in time and
// address refreshed; a new email creates a non-member account with the
// default allowance. The boolean reports whether a user was created.
func (s *UserService) Register(ctx context.Context, user types.User, ip string) (types.User, bool, error) {
	email := strings.TrimSpace(user.Email)
	if email == "" {
		return types.User{}, false, invalid("email", "is required")
	}

	now := s.now()
	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		if err := s.repo.TouchSignIn(ctx, email, now, ip); err != nil {
			return types.User{}, false, fmt.Errorf("refresh sign-in: %w", err)
		}
		existing.LastSignIn = now
		existing.IP = ip
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, false, err
	}

	username := strings.TrimSpace(user.Username)
	if username == "" {
		return types.User{}, false, invalid("username", "is required")
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return types.User{}, false, fmt.Errorf("%w: username", ErrDuplicate)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, false, err
	}

	// The unique indexes still reject a concurrent registration.
	created, err := s.repo.Create(ctx, types.User{
		Name:       user.Name,
		Email:      email,
		Username:   username,
		Photo:      user.Photo,
		Membership: types.MembershipNonMember,
		PostLimit:  types.PostCeiling(types.MembershipNonMember),
		Badges:     []string{types.BadgeBronze},
		LastSignIn: now,
		IP:         ip,
		CreatedAt:  now,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return types.User{}, false, fmt.Errorf("%w: email or username", ErrDuplicate)
		}
		return types.User{}, false, err
	}
	return created, true, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// RoleOf returns the stored role for the email, empty for ordinary users.
func (s *UserService) RoleOf(ctx context.Context, email string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *UserService) Search(ctx context.Context, query string, offset, limit int) ([]types.User, error) {
	return s.repo.Search(ctx, query, offset, limit)
}

// MakeAdmin grants the admin role to the user with the given identifier.
func (s *UserService) MakeAdmin(ctx context.Context, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return invalid("id", "is not a valid identifier")
	}
	return s.repo.SetRole(ctx, oid, types.RoleAdmin)
}
