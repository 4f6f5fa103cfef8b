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

// ReportRepository handles persistence for comment reports.
type ReportRepository struct {
	coll *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{coll: db.Collection(reportsCollection)}
}

// Create inserts a report. The unique index on commentId turns a racing
// second insert into ErrDuplicateKey.
func (r *ReportRepository) Create(ctx context.Context, report types.Report) (types.Report, error) {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	res, err := r.coll.InsertOne(ctx, report)
	if err != nil {
		return types.Report{}, translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		report.ID = id
	}
	return report, nil
}

func (r *ReportRepository) GetByComment(ctx context.Context, commentID string) (types.Report, error) {
	var report types.Report
	if err := r.coll.FindOne(ctx, bson.D{{Key: "commentId", Value: commentID}}).Decode(&report); err != nil {
		return types.Report{}, translate(err)
	}
	return report, nil
}

func (r *ReportRepository) List(ctx context.Context) ([]types.Report, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	var reports []types.Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *ReportRepository) Resolve(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{
		{Key: "$set", Value: bson.D{{Key: "status", Value: types.ReportStatusResolved}}},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReportRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
