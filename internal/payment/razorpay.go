package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"electrohive-be/internal/logger"

	"go.uber.org/zap"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

type razorpayGateway struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// NewRazorpayGateway builds the HTTP client for the Razorpay orders and
// payments APIs. Calls are bounded by the client timeout so a slow provider
// cannot hang a checkout request.
func NewRazorpayGateway(keyID, keySecret string) Gateway {
	if keyID == "" || keySecret == "" {
		logger.L().Warn("Razorpay credentials are not fully configured")
	}

	return &razorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   razorpayBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type razorpayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*GatewayOrder, error) {
	log := logger.FromCtx(ctx).With(
		zap.Int64("amount", amountMinorUnits),
		zap.String("currency", currency),
		zap.String("receipt", receipt),
	)

	body := map[string]interface{}{
		"amount":   amountMinorUnits,
		"currency": currency,
		"receipt":  receipt,
		// Auto-capture: a successful charge settles immediately instead of
		// sitting in an authorized-only state needing a second step.
		"payment_capture": 1,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/orders", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("failed creating order request", zap.Error(err))
		return nil, err
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Add("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("Razorpay order request failed", zap.Error(err))
		return nil, &GatewayError{StatusCode: http.StatusInternalServerError, Message: "payment gateway unreachable"}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read razorpay response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("Razorpay returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, gatewayErrorFrom(resp.StatusCode, bodyBytes)
	}

	var order GatewayOrder
	if err := json.Unmarshal(bodyBytes, &order); err != nil {
		log.Error("failed decoding Razorpay order", zap.Error(err))
		return nil, err
	}

	log.Info("Razorpay order created",
		zap.String("order_id", order.ID),
		zap.String("status", order.Status),
	)
	return &order, nil
}

func (g *razorpayGateway) FetchPayment(ctx context.Context, paymentID string) (*PaymentRecord, error) {
	log := logger.FromCtx(ctx).With(zap.String("payment_id", paymentID))

	url := fmt.Sprintf("%s/payments/%s", g.baseURL, paymentID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		log.Error("failed building payment fetch request", zap.Error(err))
		return nil, err
	}
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("Razorpay payment fetch failed", zap.Error(err))
		return nil, &GatewayError{StatusCode: http.StatusInternalServerError, Message: "payment gateway unreachable"}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read razorpay response: %w", err)
	}

	if isUnknownPayment(resp.StatusCode, bodyBytes) {
		log.Warn("payment record not found", zap.ByteString("response", bodyBytes))
		return nil, ErrPaymentRecordNotFound
	}
	if resp.StatusCode != http.StatusOK {
		log.Error("Razorpay returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, gatewayErrorFrom(resp.StatusCode, bodyBytes)
	}

	var record PaymentRecord
	if err := json.Unmarshal(bodyBytes, &record); err != nil {
		log.Error("failed decoding Razorpay payment", zap.Error(err))
		return nil, err
	}
	return &record, nil
}

// isUnknownPayment recognizes the provider's answer for a payment id that
// does not exist. Razorpay reports it as a 400 BAD_REQUEST_ERROR rather than
// a plain 404.
func isUnknownPayment(status int, body []byte) bool {
	if status == http.StatusNotFound {
		return true
	}
	if status != http.StatusBadRequest {
		return false
	}
	var parsed razorpayErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false
	}
	return strings.Contains(parsed.Error.Description, "does not exist")
}

// gatewayErrorFrom normalizes a provider error payload. Provider-supplied 4xx
// statuses pass through; anything else surfaces as a 500. Raw payloads stay in
// the logs, never in the client response.
func gatewayErrorFrom(status int, body []byte) *GatewayError {
	msg := "payment gateway error"
	var parsed razorpayErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Description != "" {
		msg = parsed.Error.Description
	}

	if status < 400 || status >= 500 {
		status = http.StatusInternalServerError
	}
	return &GatewayError{StatusCode: status, Message: msg}
}
