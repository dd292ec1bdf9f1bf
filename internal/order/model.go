package order

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           string             `bson:"user_id" json:"user_id"`
	Items            []OrderItem        `bson:"items" json:"items"`
	Amount           int64              `bson:"amount" json:"amount"` // minor units
	Currency         string             `bson:"currency" json:"currency"`
	Status           string             `bson:"status" json:"status"`
	GatewayOrderID   string             `bson:"gateway_order_id,omitempty" json:"gateway_order_id,omitempty"`
	GatewayPaymentID string             `bson:"gateway_payment_id,omitempty" json:"gateway_payment_id,omitempty"`
	PaymentMethod    string             `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	PaidAt           *time.Time         `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
}

// OrderItem snapshots a cart line at checkout time. Unlike cart lines, the
// price here is frozen: the order records what the buyer agreed to pay.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Name      string             `bson:"name" json:"name"`
	UnitPrice float64            `bson:"unit_price" json:"unit_price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}
