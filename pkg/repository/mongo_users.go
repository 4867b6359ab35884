package repository

import (
	"context"
	"time"

	"github.com/example/stockdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (m *MongoRepository) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := m.collection(usersCollection).InsertOne(ctx, u)
	return writeErr(err)
}

func (m *MongoRepository) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := decodeOne(m.collection(usersCollection).FindOne(ctx, bson.M{"_id": id}), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (m *MongoRepository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := decodeOne(m.collection(usersCollection).FindOne(ctx, bson.M{"email": email}), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (m *MongoRepository) ListUsersExcept(ctx context.Context, id primitive.ObjectID) ([]models.User, error) {
	return findAll[models.User](ctx, m.collection(usersCollection), bson.M{"_id": bson.M{"$ne": id}}, oldestFirst)
}

func (m *MongoRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, p models.ProfileUpdate) (*models.User, error) {
	update := bson.M{"$set": bson.M{
		"name":      p.Name,
		"email":     p.Email,
		"address":   p.Address,
		"updatedAt": time.Now(),
	}}
	var u models.User
	res := m.collection(usersCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, returnAfter)
	if err := decodeOne(res, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (m *MongoRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, m.collection(usersCollection), id)
}
