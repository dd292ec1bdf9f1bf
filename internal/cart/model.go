package cart

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart is one document per user. Lines keep insertion order; TotalPrice and
// TotalItems are derived caches, recomputed from current product prices in the
// same operation that mutates Lines and written in the same single-document
// update.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	Lines      []CartLine         `bson:"lines"`
	TotalPrice float64            `bson:"total_price"`
	TotalItems int                `bson:"total_items"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

// CartLine pairs one product with a quantity. At most one line per product;
// quantity is always >= 1 (a line that would drop to zero is removed instead).
type CartLine struct {
	ID        primitive.ObjectID `bson:"_id"`
	ProductID primitive.ObjectID `bson:"product_id"`
	Quantity  int                `bson:"quantity"`
	AddedAt   time.Time          `bson:"added_at"`
}

// View is the denormalized cart shape returned to clients, with product
// details populated for display.
type View struct {
	Items      []LineView `json:"items"`
	TotalPrice float64    `json:"total_price"`
	TotalItems int        `json:"total_item_count"`
}

type LineView struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url"`
	Stock     int     `json:"stock"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}
