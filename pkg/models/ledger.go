package models

import "time"

const (
	ReasonOrderPlaced    = "order_placed"
	ReasonOrderCancelled = "order_cancelled"
	ReasonOrderDeleted   = "order_deleted"
	ReasonAdjustment     = "adjustment"
)

// StockMovement is one append-only entry of the stock ledger.
type StockMovement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID string    `gorm:"type:varchar(24);not null;index" json:"productId"`
	OrderID   string    `gorm:"type:varchar(24);index" json:"orderId,omitempty"`
	Delta     int       `gorm:"not null" json:"delta"`
	Reason    string    `gorm:"type:varchar(32);not null" json:"reason"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}
