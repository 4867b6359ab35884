package repository

import (
	"errors"
	"testing"

	"github.com/example/stockdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestWriteErrMapsDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, writeErr(dup), models.ErrDuplicate)

	other := errors.New("network down")
	assert.Equal(t, other, writeErr(other))
	assert.NoError(t, writeErr(nil))
}

func TestConditionalFilters(t *testing.T) {
	id := primitive.NewObjectID()

	assert.Equal(t, bson.M{"_id": id, "stock": bson.M{"$gte": 3}}, reserveFilter(id, 3))
	assert.Equal(t, bson.M{"_id": id, "status": models.OrderShipped}, transitionFilter(id, models.OrderShipped))

	claim := claimFilter("order_1")
	assert.Equal(t, models.PaymentPaid, claim["status"])
	assert.Equal(t, bson.M{"$exists": false}, claim["orderRef"])
}
