package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/example/stockdesk/pkg/config"
	"github.com/example/stockdesk/pkg/models"
	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("payment gateway credentials are not configured")

// orderAPI is the part of the razorpay SDK the client uses.
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client talks to the Razorpay Orders API and verifies checkout callbacks.
type Client struct {
	orders orderAPI
	secret string
	logger *zap.Logger
}

func NewClient(cfg *config.PaymentConfig, logger *zap.Logger) *Client {
	c := &Client{secret: cfg.KeySecret, logger: logger}
	if cfg.KeyID != "" && cfg.KeySecret != "" {
		c.orders = razorpay.NewClient(cfg.KeyID, cfg.KeySecret).Order
	}
	return c
}

// CreateOrder opens a gateway order. amount is in minor units.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*models.GatewayOrder, error) {
	if c.orders == nil {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := c.orders.Create(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		c.logger.Error("Failed to create gateway order", zap.String("receipt", receipt), zap.Error(err))
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}

	order := &models.GatewayOrder{
		ID:       stringField(body, "id"),
		Amount:   intField(body, "amount", amount),
		Currency: stringField(body, "currency"),
		Receipt:  stringField(body, "receipt"),
		Status:   stringField(body, "status"),
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay order create: response has no order id")
	}
	if order.Currency == "" {
		order.Currency = currency
	}
	if order.Receipt == "" {
		order.Receipt = receipt
	}
	return order, nil
}

func (c *Client) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	if c.secret == "" {
		return false
	}
	return VerifySignature(c.secret, gatewayOrderID, gatewayPaymentID, signature)
}

// Sign computes the checkout signature: hex HMAC-SHA256 of "orderId|paymentId".
func Sign(secret, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time.
func VerifySignature(secret, gatewayOrderID, gatewayPaymentID, signature string) bool {
	expected := Sign(secret, gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func stringField(body map[string]interface{}, key string) string {
	if v, ok := body[key].(string); ok {
		return v
	}
	return ""
}

func intField(body map[string]interface{}, key string, fallback int64) int64 {
	switch v := body[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return fallback
}
