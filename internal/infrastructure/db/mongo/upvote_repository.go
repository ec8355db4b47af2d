package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicwatch/report-system/internal/core/domain"
)

// UpvoteRepository stores one document per (report_id, user_id). The unique
// index created by EnsureIndexes rejects concurrent duplicates.
type UpvoteRepository struct {
	col *mongo.Collection
}

func NewUpvoteRepository(db *mongo.Database) *UpvoteRepository {
	return &UpvoteRepository{col: db.Collection(collectionUpvotes)}
}

type upvoteDoc struct {
	ReportID  string    `bson:"report_id"`
	UserID    string    `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
}

func (r *UpvoteRepository) Exists(ctx context.Context, reportID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"report_id": reportID, "user_id": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("find upvote: %w", err)
	}
	return n > 0, nil
}

func (r *UpvoteRepository) Insert(ctx context.Context, u *domain.Upvote) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, upvoteDoc{ReportID: u.ReportID, UserID: u.UserID, CreatedAt: u.CreatedAt})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUpvoteExists
		}
		return fmt.Errorf("insert upvote: %w", err)
	}
	return nil
}

// Delete removes the pair; deleting an absent pair is not an error.
func (r *UpvoteRepository) Delete(ctx context.Context, reportID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"report_id": reportID, "user_id": userID}); err != nil {
		return fmt.Errorf("delete upvote: %w", err)
	}
	return nil
}

func (r *UpvoteRepository) CountByReports(ctx context.Context, reportIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(reportIDs))
	if len(reportIDs) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"report_id": bson.M{"$in": reportIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$report_id", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count upvotes: %w", err)
	}
	var rows []struct {
		ReportID string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode upvote counts: %w", err)
	}
	for _, row := range rows {
		out[row.ReportID] = row.Count
	}
	return out, nil
}
