package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/stockdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (m *MongoRepository) CreateOrder(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := m.collection(ordersCollection).InsertOne(ctx, o)
	return writeErr(err)
}

func (m *MongoRepository) OrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := decodeOne(m.collection(ordersCollection).FindOne(ctx, bson.M{"_id": id}), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (m *MongoRepository) ListOrders(ctx context.Context) ([]models.Order, error) {
	return findAll[models.Order](ctx, m.collection(ordersCollection), bson.M{}, newestFirst)
}

func (m *MongoRepository) ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return findAll[models.Order](ctx, m.collection(ordersCollection), bson.M{"user": userID}, newestFirst)
}

func transitionFilter(id primitive.ObjectID, from models.OrderStatus) bson.M {
	return bson.M{"_id": id, "status": from}
}

// TransitionOrder is a compare-and-set on the status field.
func (m *MongoRepository) TransitionOrder(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}
	var o models.Order
	res := m.collection(ordersCollection).FindOneAndUpdate(ctx, transitionFilter(id, from), update, returnAfter)
	if err := decodeOne(res, &o); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, m.conditionErr(ctx, ordersCollection, id)
		}
		return nil, err
	}
	return &o, nil
}

func (m *MongoRepository) DeleteOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := decodeOne(m.collection(ordersCollection).FindOneAndDelete(ctx, bson.M{"_id": id}), &o); err != nil {
		return nil, err
	}
	return &o, nil
}
