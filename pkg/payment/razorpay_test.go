package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/example/stockdesk/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrders struct {
	got  map[string]interface{}
	resp map[string]interface{}
	err  error
}

func (f *fakeOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.got = data
	return f.resp, f.err
}

func TestSignAndVerify(t *testing.T) {
	sig := Sign("secret", "order_1", "pay_1")
	assert.Len(t, sig, 64)
	assert.True(t, VerifySignature("secret", "order_1", "pay_1", sig))
	assert.False(t, VerifySignature("secret", "order_1", "pay_2", sig))
	assert.False(t, VerifySignature("other", "order_1", "pay_1", sig))
	assert.False(t, VerifySignature("secret", "order_1", "pay_1", ""))
}

func TestCreateOrder(t *testing.T) {
	orders := &fakeOrders{resp: map[string]interface{}{
		"id":       "order_abc",
		"amount":   float64(12345),
		"currency": "INR",
		"receipt":  "receipt_1",
		"status":   "created",
	}}
	c := &Client{orders: orders, secret: "s", logger: zap.NewNop()}

	got, err := c.CreateOrder(context.Background(), 12345, "INR", "receipt_1")
	require.NoError(t, err)
	assert.Equal(t, "order_abc", got.ID)
	assert.Equal(t, int64(12345), got.Amount)
	assert.Equal(t, "created", got.Status)
	assert.Equal(t, int64(12345), orders.got["amount"])
	assert.Equal(t, "receipt_1", orders.got["receipt"])
}

func TestCreateOrderErrors(t *testing.T) {
	c := NewClient(&config.PaymentConfig{}, zap.NewNop())
	_, err := c.CreateOrder(context.Background(), 100, "INR", "r")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, c.VerifySignature("o", "p", Sign("", "o", "p")))

	c = &Client{orders: &fakeOrders{err: errors.New("boom")}, logger: zap.NewNop()}
	_, err = c.CreateOrder(context.Background(), 100, "INR", "r")
	assert.Error(t, err)

	c = &Client{orders: &fakeOrders{resp: map[string]interface{}{}}, logger: zap.NewNop()}
	_, err = c.CreateOrder(context.Background(), 100, "INR", "r")
	assert.Error(t, err)
}
