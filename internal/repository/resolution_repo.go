package repository

import (
	"context"
	"log"
	"menuengine/internal/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	resolutionRetention   = 30 * 24 * time.Hour
	resolutionWriteBudget = 5 * time.Second
)

// ResolutionRepo handles MongoDB operations for the resolution log
type ResolutionRepo interface {
	Insert(ctx context.Context, entry *model.ResolutionLog) error
	ListByPlace(ctx context.Context, placeID string, limit int64) ([]*model.ResolutionLog, error)
	// Record writes entry in the background
	Record(entry *model.ResolutionLog)
}

type resolutionRepo struct {
	collection *mongo.Collection
}

// NewResolutionRepo creates a new resolution log repository with indexes
func NewResolutionRepo(db *mongo.Database) ResolutionRepo {
	repo := &resolutionRepo{
		collection: db.Collection("menu_resolutions"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *resolutionRepo) ensureIndexes(ctx context.Context) {
	createIndex(ctx, r.collection, bson.D{
		{Key: "placeId", Value: 1},
		{Key: "resolvedAt", Value: -1},
	}, options.Index())
	createIndex(ctx, r.collection, bson.D{{Key: "resolvedAt", Value: 1}},
		options.Index().SetExpireAfterSeconds(int32(resolutionRetention.Seconds())))
}

func (r *resolutionRepo) Insert(ctx context.Context, entry *model.ResolutionLog) error {
	if entry.ResolvedAt.IsZero() {
		entry.ResolvedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *resolutionRepo) ListByPlace(ctx context.Context, placeID string, limit int64) ([]*model.ResolutionLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "resolvedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"placeId": placeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*model.ResolutionLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *resolutionRepo) Record(entry *model.ResolutionLog) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), resolutionWriteBudget)
		defer cancel()
		if err := r.Insert(ctx, entry); err != nil {
			log.Printf("[Resolutions] failed to record %s: %v", entry.PlaceID, err)
		}
	}()
}

func createIndex(ctx context.Context, coll *mongo.Collection, keys bson.D, opts *options.IndexOptions) {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts})
	if err != nil {
		log.Printf("Warning: failed to create index on %s: %v", coll.Name(), err)
	}
}
