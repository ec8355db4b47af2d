package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultTimeout = 10 * time.Second

	collectionUsers          = "users"
	collectionMunicipalities = "municipalities"
	collectionReports        = "reports"
	collectionUpvotes        = "upvotes"
	collectionActivity       = "report_activity"
)

// Config holds the connection settings read from MONGO_URI and MONGO_DB.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect dials the cluster, pings the primary and returns the client with
// the report database selected.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("report-system").
		SetServerSelectionTimeout(timeout)

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes the access rules rely on. The unique
// (report_id, user_id) index is what makes the upvote toggle race-safe.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	plan := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "municipality_id", Value: 1}, {Key: "role", Value: 1}}},
		},
		collectionMunicipalities: {
			{Keys: bson.D{{Key: "boundary", Value: "2dsphere"}}},
		},
		collectionReports: {
			{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "municipality_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collectionUpvotes: {
			{Keys: bson.D{{Key: "report_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionActivity: {
			{Keys: bson.D{{Key: "report_id", Value: 1}, {Key: "at", Value: -1}}},
		},
	}

	for coll, indexes := range plan {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("mongo indexes %s: %w", coll, err)
		}
	}
	return nil
}
