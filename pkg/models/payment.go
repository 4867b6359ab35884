package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentCreated PaymentStatus = "created"
	PaymentPaid    PaymentStatus = "paid"
)

// Payment tracks one gateway order. Amount is in minor currency units.
type Payment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	GatewayOrderID   string             `bson:"orderId" json:"orderId"`
	GatewayPaymentID string             `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	Signature        string             `bson:"signature,omitempty" json:"-"`
	Amount           int64              `bson:"amount" json:"amount"`
	Currency         string             `bson:"currency" json:"currency"`
	Receipt          string             `bson:"receipt" json:"receipt"`
	Status           PaymentStatus      `bson:"status" json:"status"`
	UserID           primitive.ObjectID `bson:"user" json:"user"`
	OrderRef         primitive.ObjectID `bson:"orderRef,omitempty" json:"orderRef,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// GatewayOrder is the descriptor the client needs to open the checkout.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}
