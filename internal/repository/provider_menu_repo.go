package repository

import (
	"context"
	"menuengine/internal/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProviderMenuRepo handles MongoDB operations for partner-synced menus
type ProviderMenuRepo interface {
	Upsert(ctx context.Context, menu *model.ProviderMenu) error
	GetMenu(ctx context.Context, placeID string) (*model.ProviderMenu, error)
	Delete(ctx context.Context, placeID string) error
}

type providerMenuRepo struct {
	collection *mongo.Collection
}

// NewProviderMenuRepo creates a new provider menu repository with a unique
// place index
func NewProviderMenuRepo(db *mongo.Database) ProviderMenuRepo {
	repo := &providerMenuRepo{
		collection: db.Collection("provider_menus"),
	}
	createIndex(context.Background(), repo.collection, bson.D{{Key: "placeId", Value: 1}}, options.Index().SetUnique(true))
	return repo
}

func (r *providerMenuRepo) Upsert(ctx context.Context, menu *model.ProviderMenu) error {
	if menu.UpdatedAt.IsZero() {
		menu.UpdatedAt = time.Now().UTC()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"placeId": menu.PlaceID}, menu, opts)
	return err
}

func (r *providerMenuRepo) GetMenu(ctx context.Context, placeID string) (*model.ProviderMenu, error) {
	var menu model.ProviderMenu
	err := r.collection.FindOne(ctx, bson.M{"placeId": placeID}).Decode(&menu)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *providerMenuRepo) Delete(ctx context.Context, placeID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"placeId": placeID})
	return err
}
