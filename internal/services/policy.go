package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forumhub/apiserver/internal/store"
	"github.com/forumhub/apiserver/types"
)

// UserLookup is the slice of the user store the policy needs.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
}

// AccessPolicy decides role and ownership questions for an identity that
// the authentication gate has already verified.
type AccessPolicy struct {
	users UserLookup
}

func NewAccessPolicy(users UserLookup) *AccessPolicy {
	return &AccessPolicy{users: users}
}

// RequireAdmin permits only identities whose stored role is admin. The role
// is read from the store on every call, never from the token.
func (p *AccessPolicy) RequireAdmin(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrUnauthorized
	}

	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("load user: %w", err)
	}
	if !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// RequireOwner permits the actor only when it is the resource owner.
func (p *AccessPolicy) RequireOwner(actor, owner string) error {
	return requireOwner(actor, owner)
}

func requireOwner(actor, owner string) error {
	if strings.TrimSpace(actor) == "" {
		return ErrUnauthorized
	}
	if actor != owner {
		return ErrForbidden
	}
	return nil
}
