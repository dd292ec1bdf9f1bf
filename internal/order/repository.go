package order

import (
	"context"
	"time"

	"electrohive-be/internal/payment"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	ListByUser(ctx context.Context, userID string) ([]*Order, error)

	// MarkPaid satisfies payment.OrderMarker.
	MarkPaid(ctx context.Context, orderRef string, p payment.VerifiedPayment) error
}

type repository struct {
	collection *mongo.Collection
}

func NewRepository(database *mongo.Database) Repository {
	return &repository{collection: database.Collection("orders")}
}

// compile-time check: orders are the verifier's bookkeeping collaborator
var _ payment.OrderMarker = (Repository)(nil)

func (r *repository) Create(ctx context.Context, o *Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}

	res, err := r.collection.InsertOne(ctx, o)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = oid
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) MarkPaid(ctx context.Context, orderRef string, p payment.VerifiedPayment) error {
	oid, err := primitive.ObjectIDFromHex(orderRef)
	if err != nil {
		return ErrInvalidRef
	}

	now := time.Now()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"status":             StatusPaid,
			"gateway_order_id":   p.OrderID,
			"gateway_payment_id": p.ID,
			"payment_method":     p.Method,
			"paid_at":            now,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}
