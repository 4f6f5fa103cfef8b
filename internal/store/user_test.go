package store

import (
	"context"
	"testing"
	"time"

	"github.com/forumhub/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get by email", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "forum.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "email", Value: "ada@example.com"},
			{Key: "username", Value: "ada"},
			{Key: "role", Value: "admin"},
			{Key: "membership", Value: "member"},
			{Key: "postLimit", Value: 7},
		}))

		user, err := NewUserRepository(mt.DB).GetByEmail(ctx, "ada@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, user.ID)
		assert.Equal(mt, "ada", user.Username)
		assert.True(mt, user.IsAdmin())
		assert.Equal(mt, 7, user.PostLimit)
	})

	mt.Run("get missing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "forum.users", mtest.FirstBatch))

		_, err := NewUserRepository(mt.DB).GetByUsername(ctx, "ghost")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("create assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user, err := NewUserRepository(mt.DB).Create(ctx, types.User{
			Email:     "ada@example.com",
			Username:  "ada",
			CreatedAt: time.Now(),
		})
		require.NoError(mt, err)
		assert.False(mt, user.ID.IsZero())
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		_, err := NewUserRepository(mt.DB).Create(ctx, types.User{Email: "ada@example.com"})
		assert.ErrorIs(mt, err, ErrDuplicateKey)
	})

	mt.Run("inc post limit on missing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := NewUserRepository(mt.DB).IncPostLimit(ctx, "ghost@example.com", -1)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("upgrade membership", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := NewUserRepository(mt.DB).UpgradeMembership(ctx, "ada@example.com", types.MembershipPostBonus, types.BadgeGold)
		assert.NoError(mt, err)
	})

	mt.Run("search", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "forum.users", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "username", Value: "ada"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "username", Value: "adam"}},
		))

		users, err := NewUserRepository(mt.DB).Search(ctx, "ad", 0, 10)
		require.NoError(mt, err)
		assert.Len(mt, users, 2)
	})
}

func TestParseID(t *testing.T) {
	id := primitive.NewObjectID()

	parsed, err := ParseID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("nope")
	assert.ErrorIs(t, err, ErrInvalidID)
}
