package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	Stock      int                `bson:"stock" json:"stock"`
	Price      decimal.Decimal    `bson:"price" json:"price"`
	CategoryID primitive.ObjectID `bson:"category" json:"categoryId"`
	SupplierID primitive.ObjectID `bson:"supplier" json:"supplierId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductDetail is a product joined with its category and supplier.
// Either reference may be nil when the referenced record no longer exists.
type ProductDetail struct {
	Product
	Category *Category `json:"category"`
	Supplier *Supplier `json:"supplier"`
}
