package product

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository is the product-lookup collaborator for the cart and catalog
// endpoints. A missing product is reported as (nil, nil); callers decide
// whether that is an error.
type Repository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Insert(ctx context.Context, products []*Product) error
}

type repository struct {
	collection *mongo.Collection
}

func NewRepository(database *mongo.Database) Repository {
	return &repository{collection: database.Collection("products")}
}

func (r *repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	var p Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*Product, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]*Product{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	byID := make(map[primitive.ObjectID]*Product, len(ids))
	for cursor.Next(ctx) {
		var p Product
		if err := cursor.Decode(&p); err != nil {
			return nil, err
		}
		byID[p.ID] = &p
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return byID, nil
}

func (r *repository) List(ctx context.Context) ([]*Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []*Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) Insert(ctx context.Context, products []*Product) error {
	if len(products) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(products))
	now := time.Now()
	for _, p := range products {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		docs = append(docs, p)
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}
