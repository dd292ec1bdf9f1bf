package cart

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	CreateIndexes(ctx context.Context) error
}

type repository struct {
	collection *mongo.Collection
}

func NewRepository(database *mongo.Database) Repository {
	return &repository{collection: database.Collection("carts")}
}

func (r *repository) Get(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Save upserts the whole cart document keyed by user_id. Lines and totals
// always land in the same write, so they cannot drift from each other.
// Nothing guards two concurrent saves of the same cart: last write wins.
func (r *repository) Save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}

	update := bson.M{
		"$set": bson.M{
			"lines":       c.Lines,
			"total_price": c.TotalPrice,
			"total_items": c.TotalItems,
			"updated_at":  c.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"user_id":    c.UserID,
			"created_at": c.CreatedAt,
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"user_id": c.UserID}, update,
		options.Update().SetUpsert(true))
	return err
}

func (r *repository) CreateIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
