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

// ActivityRepository persists the report audit trail.
type ActivityRepository struct {
	col *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(collectionActivity)}
}

type activityDoc struct {
	ReportID         string    `bson:"report_id"`
	ActorID          string    `bson:"actor_id"`
	Action           string    `bson:"action"`
	Status           string    `bson:"status,omitempty"`
	AssignedOfficial string    `bson:"assigned_official,omitempty"`
	Category         string    `bson:"category,omitempty"`
	At               time.Time `bson:"at"`
	RecordedAt       time.Time `bson:"recorded_at"`
}

func (r *ActivityRepository) Insert(ctx context.Context, a *domain.ReportActivity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := activityDoc{
		ReportID:         a.ReportID,
		ActorID:          a.ActorID,
		Action:           string(a.Action),
		Status:           string(a.Status),
		AssignedOfficial: a.AssignedOfficial,
		Category:         a.Category,
		At:               a.At.UTC(),
		RecordedAt:       time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListByReport(ctx context.Context, reportID string, limit int) ([]*domain.ReportActivity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"report_id": reportID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	var docs []activityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}

	out := make([]*domain.ReportActivity, len(docs))
	for i, d := range docs {
		out[i] = &domain.ReportActivity{
			ReportID:         d.ReportID,
			ActorID:          d.ActorID,
			Action:           domain.ActivityAction(d.Action),
			Status:           domain.ReportStatus(d.Status),
			AssignedOfficial: d.AssignedOfficial,
			Category:         d.Category,
			At:               d.At,
		}
	}
	return out, nil
}
