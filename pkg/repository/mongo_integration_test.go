package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/example/stockdesk/pkg/config"
	"github.com/example/stockdesk/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newTestMongo connects to MONGO_URI with a throwaway database, or skips.
func newTestMongo(t *testing.T) *MongoRepository {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	repo, err := NewMongoRepository(&config.MongoDBConfig{
		URI:             uri,
		Database:        fmt.Sprintf("stockdesk_test_%d", time.Now().UnixNano()),
		AuditCollection: "audit_logs",
		ConnectTimeout:  5 * time.Second,
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes(ctx))
	t.Cleanup(func() {
		_ = repo.database.Drop(context.Background())
		_ = repo.Close(context.Background())
	})
	return repo
}

func TestMongoReserveStockConditions(t *testing.T) {
	repo := newTestMongo(t)
	ctx := context.Background()

	p := &models.Product{Name: "Tea", Stock: 5, Price: decimal.RequireFromString("2.50")}
	require.NoError(t, repo.CreateProduct(ctx, p))

	got, err := repo.ReserveStock(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("2.5")))

	_, err = repo.ReserveStock(ctx, p.ID, 3)
	assert.ErrorIs(t, err, models.ErrConditionFailed)

	_, err = repo.ReserveStock(ctx, primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, repo.ReleaseStock(ctx, p.ID, 3))
	stored, err := repo.ProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Stock)
}

func TestMongoTransitionOrderConditions(t *testing.T) {
	repo := newTestMongo(t)
	ctx := context.Background()

	o := &models.Order{
		UserID:   primitive.NewObjectID(),
		Products: []models.OrderLine{{ProductID: primitive.NewObjectID(), Quantity: 1}},
		Status:   models.OrderPending,
	}
	require.NoError(t, repo.CreateOrder(ctx, o))

	got, err := repo.TransitionOrder(ctx, o.ID, models.OrderPending, models.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, got.Status)

	_, err = repo.TransitionOrder(ctx, o.ID, models.OrderPending, models.OrderCancelled)
	assert.ErrorIs(t, err, models.ErrConditionFailed)

	_, err = repo.TransitionOrder(ctx, primitive.NewObjectID(), models.OrderPending, models.OrderShipped)
	assert.ErrorIs(t, err, models.ErrNotFound)

	deleted, err := repo.DeleteOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, deleted.Status)
	_, err = repo.DeleteOrder(ctx, o.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMongoClaimPaymentConditions(t *testing.T) {
	repo := newTestMongo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreatePayment(ctx, &models.Payment{
		GatewayOrderID: "order_1",
		Amount:         500,
		Currency:       "INR",
		Status:         models.PaymentCreated,
		UserID:         primitive.NewObjectID(),
	}))

	first := primitive.NewObjectID()
	_, err := repo.ClaimPayment(ctx, "order_1", first)
	assert.ErrorIs(t, err, models.ErrConditionFailed, "unpaid payments cannot be claimed")

	_, err = repo.MarkPaymentPaid(ctx, "order_1", "pay_1", "sig")
	require.NoError(t, err)

	claimed, err := repo.ClaimPayment(ctx, "order_1", first)
	require.NoError(t, err)
	assert.Equal(t, first, claimed.OrderRef)

	_, err = repo.ClaimPayment(ctx, "order_1", primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrConditionFailed)

	_, err = repo.ClaimPayment(ctx, "order_missing", first)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, repo.ReleasePayment(ctx, "order_1", first))
	_, err = repo.ClaimPayment(ctx, "order_1", primitive.NewObjectID())
	assert.NoError(t, err)
}
