package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles and membership tiers stored on a user document.
const (
	RoleAdmin = "admin"

	MembershipMember    = "member"
	MembershipNonMember = "non-member"

	BadgeBronze = "Bronze"
	BadgeGold   = "Gold"
)

// User represents a forum account.
// It is keyed by a unique email and a unique username; role and membership
// tier are tracked independently, so an admin may also be a member.
type User struct {
	// ID is the document identifier assigned by the store.
	ID primitive.ObjectID `json:"_id" bson:"_id,omitempty"`

	// Name is the display name reported by the sign-in provider.
	Name string `json:"name" bson:"name"`

	// Email is the unique identity claim carried by the session cookie.
	Email string `json:"email" bson:"email"`

	// Username is the unique public handle.
	Username string `json:"username" bson:"username"`

	// Photo is the avatar URL.
	Photo string `json:"photo,omitempty" bson:"photo,omitempty"`

	// Role is "admin" for moderators and empty for everyone else.
	Role string `json:"role,omitempty" bson:"role,omitempty"`

	// Membership is the quota tier, "member" or "non-member".
	Membership string `json:"membership" bson:"membership"`

	// PostLimit is an advisory counter of remaining posts. It is decremented
	// on post creation and incremented on deletion; quota enforcement counts
	// posts instead of trusting it.
	PostLimit int `json:"postLimit" bson:"postLimit"`

	// IsBlocked is set by the "block" moderation action.
	IsBlocked bool `json:"isBlocked" bson:"isBlocked"`

	// Warning is set by the "warn" moderation action.
	Warning bool `json:"warning" bson:"warning"`

	// Badges is a set of labels; "Gold" is granted on membership purchase.
	Badges []string `json:"badges" bson:"badges"`

	// LastSignIn is refreshed on every sign-in.
	LastSignIn time.Time `json:"lastSignIn" bson:"lastSignIn"`

	// IP is the address the last sign-in originated from.
	IP string `json:"ip,omitempty" bson:"ip,omitempty"`

	// CreatedAt is the timestamp of first sign-in.
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PostCeiling returns the outstanding-post ceiling for the user's tier.
// Anything other than "member" is treated as "non-member".
func PostCeiling(membership string) int {
	if membership == MembershipMember {
		return 10
	}
	return 5
}
