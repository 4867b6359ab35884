package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/stockdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (m *MongoRepository) CreatePayment(ctx context.Context, p *models.Payment) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := m.collection(paymentsCollection).InsertOne(ctx, p)
	return writeErr(err)
}

func (m *MongoRepository) PaymentByGatewayOrder(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	var p models.Payment
	if err := decodeOne(m.collection(paymentsCollection).FindOne(ctx, bson.M{"orderId": gatewayOrderID}), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *MongoRepository) MarkPaymentPaid(ctx context.Context, gatewayOrderID, paymentID, signature string) (*models.Payment, error) {
	update := bson.M{"$set": bson.M{
		"paymentId": paymentID,
		"signature": signature,
		"status":    models.PaymentPaid,
		"updatedAt": time.Now(),
	}}
	var p models.Payment
	res := m.collection(paymentsCollection).FindOneAndUpdate(ctx, bson.M{"orderId": gatewayOrderID}, update, returnAfter)
	if err := decodeOne(res, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func claimFilter(gatewayOrderID string) bson.M {
	return bson.M{
		"orderId":  gatewayOrderID,
		"status":   models.PaymentPaid,
		"orderRef": bson.M{"$exists": false},
	}
}

func (m *MongoRepository) ClaimPayment(ctx context.Context, gatewayOrderID string, orderID primitive.ObjectID) (*models.Payment, error) {
	update := bson.M{"$set": bson.M{"orderRef": orderID, "updatedAt": time.Now()}}
	var p models.Payment
	res := m.collection(paymentsCollection).FindOneAndUpdate(ctx, claimFilter(gatewayOrderID), update, returnAfter)
	if err := decodeOne(res, &p); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		if _, lookupErr := m.PaymentByGatewayOrder(ctx, gatewayOrderID); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, models.ErrConditionFailed
	}
	return &p, nil
}

func (m *MongoRepository) ReleasePayment(ctx context.Context, gatewayOrderID string, orderID primitive.ObjectID) error {
	res, err := m.collection(paymentsCollection).UpdateOne(ctx,
		bson.M{"orderId": gatewayOrderID, "orderRef": orderID},
		bson.M{"$unset": bson.M{"orderRef": ""}, "$set": bson.M{"updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
