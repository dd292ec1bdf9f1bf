package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"electrohive-be/internal/logger"
	"electrohive-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const currencyINR = "INR"

// VerificationRequest carries the client-forwarded gateway callback. It is
// ephemeral: checked once, never persisted.
type VerificationRequest struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
	LocalOrderRef    string
}

// OrderSummary is the normalized shape returned to the checkout client.
type OrderSummary struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Receipt   string `json:"receipt"`
	CreatedAt int64  `json:"created_at"`
}

// VerifiedPayment is the normalized summary of a captured payment.
type VerifiedPayment struct {
	ID         string  `json:"id"`
	OrderID    string  `json:"order_id"`
	Status     string  `json:"status"`
	Amount     int64   `json:"amount"`
	AmountPaid int64   `json:"amount_paid"`
	AmountDue  int64   `json:"amount_due"`
	Currency   string  `json:"currency"`
	Method     string  `json:"method"`
	Captured   bool    `json:"captured"`
	Bank       *string `json:"bank"`
	Wallet     *string `json:"wallet"`
	VPA        *string `json:"vpa"`
	Email      *string `json:"email"`
	Contact    *string `json:"contact"`
	CreatedAt  int64   `json:"created_at"`
}

// VerificationResult is the terminal Verified state. Warning is set when the
// downstream order update failed after funds were already confirmed captured.
type VerificationResult struct {
	Payment VerifiedPayment
	Warning string
}

// OrderMarker is the downstream bookkeeping collaborator. Its failure never
// turns a verified payment into an error response.
type OrderMarker interface {
	MarkPaid(ctx context.Context, orderRef string, p VerifiedPayment) error
}

type Service interface {
	CreateOrder(ctx context.Context, amount float64) (*OrderSummary, error)
	Verify(ctx context.Context, req VerificationRequest) (*VerificationResult, error)
}

type service struct {
	gateway Gateway
	secret  string
	orders  OrderMarker // optional
	metrics *metrics.PaymentMetrics
}

// NewService wires the payment order initiator and verifier. secret is the
// gateway key secret used for callback HMACs; it is distinct from the session
// token secret and never leaves the process.
func NewService(gateway Gateway, secret string, orders OrderMarker, m *metrics.PaymentMetrics) Service {
	if m == nil {
		m = &metrics.PaymentMetrics{}
	}
	return &service{gateway: gateway, secret: secret, orders: orders, metrics: m}
}

// CreateOrder opens a gateway order for the given amount in minor units.
// Non-integer input is rounded to the nearest unit, never truncated; a
// fractional paise is not a chargeable amount.
func (s *service) CreateOrder(ctx context.Context, amount float64) (*OrderSummary, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, ErrInvalidAmount
	}

	minor := int64(math.Round(amount))
	if minor < 1 {
		return nil, ErrInvalidAmount
	}

	// Receipt labels are unique per call, even across retries of the same
	// checkout: the gateway treats receipt collisions ambiguously.
	receipt := newReceiptLabel()

	order, err := s.gateway.CreateOrder(ctx, minor, currencyINR, receipt)
	if err != nil {
		return nil, err
	}
	s.metrics.OrdersCreated.Inc()

	return &OrderSummary{
		ID:        order.ID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Status:    order.Status,
		Receipt:   order.Receipt,
		CreatedAt: order.CreatedAt,
	}, nil
}

// Verify decides with certainty whether a payment succeeded: recompute the
// callback HMAC, and only after it matches, fetch the authoritative record
// and cross-check its order and status. Client-supplied status fields are
// never trusted on their own.
func (s *service) Verify(ctx context.Context, req VerificationRequest) (*VerificationResult, error) {
	timer := metrics.StartTimer()
	log := logger.FromCtx(ctx).With(
		zap.String("gateway_order_id", req.GatewayOrderID),
		zap.String("gateway_payment_id", req.GatewayPaymentID),
	)

	if req.GatewayOrderID == "" || req.GatewayPaymentID == "" || req.Signature == "" {
		return nil, ErrMissingFields
	}

	if s.secret == "" {
		// Never silently skip verification.
		log.Error("payment signing secret missing; refusing to verify")
		return nil, ErrSecretNotConfigured
	}

	expected := ComputeSignature(req.GatewayOrderID, req.GatewayPaymentID, s.secret)
	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		// Forgery or corruption. Rejected before any gateway call; ids are
		// logged for audit, the secret never is.
		s.metrics.SignatureMismatch.Inc()
		log.Error("payment signature mismatch")
		return nil, ErrSignatureMismatch
	}

	record, err := s.gateway.FetchPayment(ctx, req.GatewayPaymentID)
	if err != nil {
		s.metrics.VerifyRejected.Inc()
		return nil, err
	}

	if record.OrderID != req.GatewayOrderID {
		// Valid signature for a different order being replayed.
		s.metrics.VerifyRejected.Inc()
		log.Error("payment belongs to a different order",
			zap.String("record_order_id", record.OrderID))
		return nil, ErrOrderMismatch
	}

	if record.Status != StatusCaptured {
		s.metrics.VerifyRejected.Inc()
		log.Warn("payment not captured", zap.String("status", record.Status))
		return nil, &NotCapturedError{Status: record.Status}
	}

	summary := summarize(record)
	result := &VerificationResult{Payment: summary}

	// Funds are confirmed captured from here on. A bookkeeping failure is
	// reported as a warning, never as a failed verification, and logged for
	// later reconciliation.
	if req.LocalOrderRef != "" && s.orders != nil {
		if err := s.orders.MarkPaid(ctx, req.LocalOrderRef, summary); err != nil {
			s.metrics.BookkeepingFailure.Inc()
			log.Error("order update failed after captured payment",
				zap.String("local_order_ref", req.LocalOrderRef),
				zap.Error(err))
			result.Warning = "payment verified but order record update failed"
		}
	}

	s.metrics.Verified.Inc()
	log.Info("payment verified",
		zap.Int64("amount", summary.Amount),
		zap.Duration("took", timer.Duration()))
	return result, nil
}

// ComputeSignature is the HMAC-SHA256 of "orderID|paymentID" under the
// gateway key secret, lowercase hex. It is the single source of authenticity
// for an otherwise unauthenticated callback.
func ComputeSignature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func summarize(record *PaymentRecord) VerifiedPayment {
	return VerifiedPayment{
		ID:         record.ID,
		OrderID:    record.OrderID,
		Status:     record.Status,
		Amount:     record.Amount,
		AmountPaid: record.Amount - record.AmountRefunded,
		AmountDue:  0,
		Currency:   record.Currency,
		Method:     record.Method,
		Captured:   record.Captured,
		Bank:       record.Bank,
		Wallet:     record.Wallet,
		VPA:        record.VPA,
		Email:      record.Email,
		Contact:    record.Contact,
		CreatedAt:  record.CreatedAt,
	}
}

func newReceiptLabel() string {
	return fmt.Sprintf("rcpt_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
