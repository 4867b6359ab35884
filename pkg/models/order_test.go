package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"pending", "shipped", "delivered", "cancelled"} {
		st, ok := ParseOrderStatus(s)
		assert.True(t, ok, s)
		assert.Equal(t, OrderStatus(s), st)
	}
	for _, s := range []string{"", "PENDING", "refunded"} {
		_, ok := ParseOrderStatus(s)
		assert.False(t, ok, s)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderShipped, true},
		{OrderPending, OrderDelivered, true},
		{OrderPending, OrderCancelled, true},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, true},
		{OrderShipped, OrderPending, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderDelivered, OrderPending, false},
		{OrderCancelled, OrderPending, false},
		{OrderCancelled, OrderShipped, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
	assert.True(t, OrderCancelled.Terminal())
	assert.True(t, OrderDelivered.Terminal())
	assert.False(t, OrderPending.Terminal())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleCustomer.Valid())
	assert.False(t, Role("root").Valid())
}
