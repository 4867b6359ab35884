package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderShipped, OrderDelivered, OrderCancelled},
	OrderShipped: {OrderDelivered, OrderCancelled},
}

// ParseOrderStatus returns false for values outside the status enum.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderPending, OrderShipped, OrderDelivered, OrderCancelled:
		return st, true
	}
	return "", false
}

// CanTransition reports whether an order may move from s to next.
// Delivered and cancelled are terminal.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Products  []OrderLine        `bson:"products" json:"products"`
	Status    OrderStatus        `bson:"status" json:"status"`
	PaymentID string             `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type OrderLine struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// OrderDetail is an order joined with its user and product records.
type OrderDetail struct {
	ID        primitive.ObjectID `json:"_id"`
	User      *User              `json:"user,omitempty"`
	Products  []OrderLineDetail  `json:"products"`
	Status    OrderStatus        `json:"status"`
	PaymentID string             `json:"paymentId,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type OrderLineDetail struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}
