package memory

import (
	"context"
	"testing"
	"time"

	"github.com/forumhub/apiserver/internal/store"
	"github.com/forumhub/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserRepositoryUniqueness(t *testing.T) {
	ctx := context.Background()
	users := New().Users

	_, err := users.Create(ctx, types.User{Email: "a@x.io", Username: "a"})
	require.NoError(t, err)

	_, err = users.Create(ctx, types.User{Email: "a@x.io", Username: "b"})
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
	_, err = users.Create(ctx, types.User{Email: "b@x.io", Username: "a"})
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
}

func TestUserRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	users := New().Users
	_, err := users.Create(ctx, types.User{Email: "a@x.io", Badges: []string{types.BadgeBronze}})
	require.NoError(t, err)

	u, err := users.GetByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	u.Badges[0] = "tampered"

	again, err := users.GetByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, []string{types.BadgeBronze}, again.Badges)
}

func TestUserRepositoryUpgradeMembership(t *testing.T) {
	ctx := context.Background()
	users := New().Users
	_, err := users.Create(ctx, types.User{Email: "a@x.io", PostLimit: 5, Badges: []string{types.BadgeBronze}})
	require.NoError(t, err)

	require.NoError(t, users.UpgradeMembership(ctx, "a@x.io", 5, types.BadgeGold))
	require.NoError(t, users.UpgradeMembership(ctx, "a@x.io", 5, types.BadgeGold))

	u, err := users.GetByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, types.MembershipMember, u.Membership)
	assert.Equal(t, 15, u.PostLimit)
	assert.Equal(t, []string{types.BadgeBronze, types.BadgeGold}, u.Badges)

	assert.ErrorIs(t, users.SetWarning(ctx, "ghost@x.io"), store.ErrNotFound)
}

func TestPostRepositoryOrdering(t *testing.T) {
	ctx := context.Background()
	posts := New().Posts
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []primitive.ObjectID
	for i, title := range []string{"old", "mid", "new"} {
		p, err := posts.Create(ctx, types.Post{Title: title, Tag: "Go", CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	require.NoError(t, posts.Vote(ctx, ids[0], types.VoteUp))
	require.NoError(t, posts.Vote(ctx, ids[0], types.VoteUp))
	require.NoError(t, posts.Vote(ctx, ids[2], types.VoteDown))

	titles := func(ps []types.Post) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Title)
		}
		return out
	}

	byDefault, err := posts.List(ctx, "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "mid", "new"}, titles(byDefault))

	byDate, err := posts.List(ctx, types.SortDate, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid", "old"}, titles(byDate))

	byPopularity, err := posts.List(ctx, types.SortPopularity, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "mid", "new"}, titles(byPopularity))

	paged, err := posts.List(ctx, types.SortDate, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, titles(paged))

	empty, err := posts.List(ctx, types.SortDate, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	found, err := posts.SearchByTag(ctx, "go")
	require.NoError(t, err)
	assert.Len(t, found, 3)

	assert.ErrorIs(t, posts.Vote(ctx, primitive.NewObjectID(), types.VoteUp), store.ErrNotFound)
}

func TestReportRepositoryOnePerComment(t *testing.T) {
	ctx := context.Background()
	reports := New().Reports

	r, err := reports.Create(ctx, types.Report{CommentID: "c1"})
	require.NoError(t, err)
	_, err = reports.Create(ctx, types.Report{CommentID: "c1"})
	assert.ErrorIs(t, err, store.ErrDuplicateKey)

	require.NoError(t, reports.Resolve(ctx, r.ID))
	got, err := reports.GetByComment(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, got.Open())

	require.NoError(t, reports.Delete(ctx, r.ID))
	assert.ErrorIs(t, reports.Delete(ctx, r.ID), store.ErrNotFound)
}
