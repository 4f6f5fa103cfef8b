package store

import (
	"context"
	"testing"

	"github.com/forumhub/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestReportRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get by comment", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "forum.reports", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "commentId", Value: "c1"},
			{Key: "status", Value: types.ReportStatusResolved},
		}))

		report, err := NewReportRepository(mt.DB).GetByComment(ctx, "c1")
		require.NoError(mt, err)
		assert.Equal(mt, "c1", report.CommentID)
		assert.False(mt, report.Open())
	})

	mt.Run("duplicate comment reference", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: forum.reports index: reports_comment_unique",
		}))

		_, err := NewReportRepository(mt.DB).Create(ctx, types.Report{CommentID: "c1"})
		assert.ErrorIs(mt, err, ErrDuplicateKey)
	})

	mt.Run("resolve missing report", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := NewReportRepository(mt.DB).Resolve(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "forum.reports", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "commentId", Value: "c2"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "commentId", Value: "c1"}},
		))

		reports, err := NewReportRepository(mt.DB).List(ctx)
		require.NoError(mt, err)
		require.Len(mt, reports, 2)
		assert.True(mt, reports[0].Open())
	})
}
