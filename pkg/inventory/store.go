package inventory

import (
	"context"

	"github.com/example/stockdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store implementations return models.ErrNotFound, models.ErrDuplicate and
// models.ErrConditionFailed; everything else is treated as an internal failure.

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsersExcept(ctx context.Context, id primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, p models.ProfileUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
}

type SupplierStore interface {
	CreateSupplier(ctx context.Context, s *models.Supplier) error
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	UpdateSupplier(ctx context.Context, s *models.Supplier) error
	DeleteSupplier(ctx context.Context, id primitive.ObjectID) error
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	ProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	// UpdateProduct overwrites the product and returns the previous version.
	UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
	// ReserveStock decrements stock by qty only if at least qty is available.
	ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) (*models.Product, error)
	ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	OrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	// TransitionOrder sets status to `to` only while it is still `from`.
	TransitionOrder(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error)
	// DeleteOrder removes the order and returns it as it was at removal time.
	DeleteOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
}

type PaymentStore interface {
	CreatePayment(ctx context.Context, p *models.Payment) error
	PaymentByGatewayOrder(ctx context.Context, gatewayOrderID string) (*models.Payment, error)
	MarkPaymentPaid(ctx context.Context, gatewayOrderID, paymentID, signature string) (*models.Payment, error)
	// ClaimPayment links a paid, unclaimed payment to an order.
	ClaimPayment(ctx context.Context, gatewayOrderID string, orderID primitive.ObjectID) (*models.Payment, error)
	ReleasePayment(ctx context.Context, gatewayOrderID string, orderID primitive.ObjectID) error
}

// StockLedger records every stock change.
type StockLedger interface {
	Record(ctx context.Context, moves []models.StockMovement) error
	History(ctx context.Context, productID string, limit int) ([]models.StockMovement, error)
}

type AuditReader interface {
	GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*models.AuditEntry, error)
}

// Auditor accepts audit entries without blocking the caller.
type Auditor interface {
	Record(entry models.AuditEntry)
}

type nopLedger struct{}

func (nopLedger) Record(context.Context, []models.StockMovement) error { return nil }

func (nopLedger) History(context.Context, string, int) ([]models.StockMovement, error) {
	return []models.StockMovement{}, nil
}

type nopAuditor struct{}

func (nopAuditor) Record(models.AuditEntry) {}
