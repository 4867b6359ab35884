package inventory

import (
	"context"
	"errors"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// MinorUnits converts a major-unit amount (rupees) to minor units (paise).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

type GatewayOrderInput struct {
	Amount decimal.Decimal `json:"amount"`
}

// VerifyInput carries the checkout callback fields as the gateway names them.
type VerifyInput struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// CreateGatewayOrder opens a checkout order for amount (major units) and
// records it as a created payment of the caller.
func (s *Service) CreateGatewayOrder(ctx context.Context, who auth.Identity, in GatewayOrderInput) (*models.GatewayOrder, error) {
	if !in.Amount.IsPositive() {
		return nil, validation("amount must be greater than zero")
	}
	minor := MinorUnits(in.Amount)
	if minor <= 0 {
		return nil, validation("amount must be greater than zero")
	}
	if s.gateway == nil {
		return nil, internal("payment gateway is not configured", errors.New("no gateway"))
	}

	receipt := "receipt_" + uuid.NewString()
	gw, err := s.gateway.CreateOrder(ctx, minor, s.opts.Currency, receipt)
	if err != nil {
		return nil, internal("failed to create payment order", err)
	}

	now := s.now()
	if err := s.payments.CreatePayment(ctx, &models.Payment{
		GatewayOrderID: gw.ID,
		Amount:         gw.Amount,
		Currency:       gw.Currency,
		Receipt:        gw.Receipt,
		Status:         models.PaymentCreated,
		UserID:         who.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		return nil, internal("failed to record payment order", err)
	}
	s.logger.Info("Payment order created",
		zap.String("gateway_order_id", gw.ID),
		zap.Int64("amount", gw.Amount),
		zap.String("user_id", who.UserID.Hex()))
	return gw, nil
}

// VerifyPayment checks the checkout signature and marks the payment paid.
// A mismatch leaves the stored payment untouched.
func (s *Service) VerifyPayment(ctx context.Context, who auth.Identity, in VerifyInput) (*models.Payment, error) {
	if blank(in.OrderID, in.PaymentID, in.Signature) {
		return nil, validation("all payment fields are required")
	}
	if s.gateway == nil {
		return nil, internal("payment gateway is not configured", errors.New("no gateway"))
	}
	if !s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		s.logger.Warn("Payment signature mismatch",
			zap.String("gateway_order_id", in.OrderID),
			zap.String("user_id", who.UserID.Hex()))
		return nil, &Error{Kind: KindPaymentVerification, Message: "payment verification failed"}
	}

	p, err := s.payments.MarkPaymentPaid(ctx, in.OrderID, in.PaymentID, in.Signature)
	if err != nil {
		return nil, storeErr(err, "payment")
	}
	s.record(who, "verify_payment", p.ID, bson.M{"orderId": p.GatewayOrderID, "paymentId": p.GatewayPaymentID})
	return p, nil
}
