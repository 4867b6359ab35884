package repository

import (
	"context"

	"github.com/example/stockdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (m *MongoRepository) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := m.collection(categoriesCollection).InsertOne(ctx, c)
	return writeErr(err)
}

func (m *MongoRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	return findAll[models.Category](ctx, m.collection(categoriesCollection), bson.M{}, oldestFirst)
}

// UpdateCategory overwrites name and description and refreshes c with the
// stored document.
func (m *MongoRepository) UpdateCategory(ctx context.Context, c *models.Category) error {
	update := bson.M{"$set": bson.M{
		"name":        c.Name,
		"description": c.Description,
		"updatedAt":   c.UpdatedAt,
	}}
	res := m.collection(categoriesCollection).FindOneAndUpdate(ctx, bson.M{"_id": c.ID}, update, returnAfter)
	return decodeOne(res, c)
}

func (m *MongoRepository) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, m.collection(categoriesCollection), id)
}

func (m *MongoRepository) CreateSupplier(ctx context.Context, s *models.Supplier) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	_, err := m.collection(suppliersCollection).InsertOne(ctx, s)
	return writeErr(err)
}

func (m *MongoRepository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return findAll[models.Supplier](ctx, m.collection(suppliersCollection), bson.M{}, oldestFirst)
}

func (m *MongoRepository) UpdateSupplier(ctx context.Context, s *models.Supplier) error {
	update := bson.M{"$set": bson.M{
		"name":      s.Name,
		"email":     s.Email,
		"phone":     s.Phone,
		"address":   s.Address,
		"updatedAt": s.UpdatedAt,
	}}
	res := m.collection(suppliersCollection).FindOneAndUpdate(ctx, bson.M{"_id": s.ID}, update, returnAfter)
	return decodeOne(res, s)
}

func (m *MongoRepository) DeleteSupplier(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, m.collection(suppliersCollection), id)
}
