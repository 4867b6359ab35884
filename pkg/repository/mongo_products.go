package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/stockdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *MongoRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := m.collection(productsCollection).InsertOne(ctx, p)
	return writeErr(err)
}

func (m *MongoRepository) ProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := decodeOne(m.collection(productsCollection).FindOne(ctx, bson.M{"_id": id}), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *MongoRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	return findAll[models.Product](ctx, m.collection(productsCollection), bson.M{}, oldestFirst)
}

func (m *MongoRepository) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	update := bson.M{"$set": bson.M{
		"name":      p.Name,
		"stock":     p.Stock,
		"price":     p.Price,
		"category":  p.CategoryID,
		"supplier":  p.SupplierID,
		"updatedAt": p.UpdatedAt,
	}}
	var prev models.Product
	res := m.collection(productsCollection).FindOneAndUpdate(ctx, bson.M{"_id": p.ID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before))
	if err := decodeOne(res, &prev); err != nil {
		return nil, err
	}
	p.CreatedAt = prev.CreatedAt
	return &prev, nil
}

func (m *MongoRepository) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, m.collection(productsCollection), id)
}

func reserveFilter(id primitive.ObjectID, qty int) bson.M {
	return bson.M{"_id": id, "stock": bson.M{"$gte": qty}}
}

func stockDelta(delta int, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{"stock": delta},
		"$set": bson.M{"updatedAt": now},
	}
}

// ReserveStock decrements stock in a single conditional update, so two
// concurrent reservations can never take the same units.
func (m *MongoRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) (*models.Product, error) {
	var p models.Product
	res := m.collection(productsCollection).FindOneAndUpdate(ctx, reserveFilter(id, qty), stockDelta(-qty, time.Now()), returnAfter)
	if err := decodeOne(res, &p); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, m.conditionErr(ctx, productsCollection, id)
		}
		return nil, err
	}
	return &p, nil
}

func (m *MongoRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := m.collection(productsCollection).UpdateOne(ctx, bson.M{"_id": id}, stockDelta(qty, time.Now()))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
