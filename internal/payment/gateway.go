package payment

import "context"

// Gateway exposes exactly the two provider operations this flow uses. The
// provider is authoritative: a PaymentRecord is ground truth for whether
// funds actually moved.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*PaymentRecord, error)
}

// GatewayOrder is the normalized subset of the provider's order entity.
// Amount is in minor units (paise), always integral.
type GatewayOrder struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Receipt   string `json:"receipt"`
	CreatedAt int64  `json:"created_at"`
}

// PaymentRecord is fetched from the provider and treated as read-only.
type PaymentRecord struct {
	ID             string  `json:"id"`
	OrderID        string  `json:"order_id"`
	Status         string  `json:"status"`
	Amount         int64   `json:"amount"`
	AmountRefunded int64   `json:"amount_refunded"`
	Currency       string  `json:"currency"`
	Method         string  `json:"method"`
	Captured       bool    `json:"captured"`
	Bank           *string `json:"bank"`
	Wallet         *string `json:"wallet"`
	VPA            *string `json:"vpa"`
	Email          *string `json:"email"`
	Contact        *string `json:"contact"`
	CreatedAt      int64   `json:"created_at"`
}

// StatusCaptured is the only provider status treated as success; authorized
// funds that were never captured are not money in the bank.
const StatusCaptured = "captured"
