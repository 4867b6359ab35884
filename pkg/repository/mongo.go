package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/stockdesk/pkg/config"
	"github.com/example/stockdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection      = "users"
	categoriesCollection = "categories"
	suppliersCollection  = "suppliers"
	productsCollection   = "products"
	ordersCollection     = "orders"
	paymentsCollection   = "payments"
)

// MongoRepository implements every entity store on one database.
type MongoRepository struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoDBConfig
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetRegistry(NewRegistry()))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoRepository{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoRepository) collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// caseInsensitive makes unique names collide regardless of letter case.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

func uniqueIndex(field string, collation *options.Collation) mongo.IndexModel {
	opts := options.Index().SetUnique(true)
	if collation != nil {
		opts.SetCollation(collation)
	}
	return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}, Options: opts}
}

// EnsureIndexes creates the unique keys the stores rely on for conflict
// detection. It is safe to call on every start.
func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection:      {uniqueIndex("email", nil)},
		categoriesCollection: {uniqueIndex("name", caseInsensitive)},
		suppliersCollection:  {uniqueIndex("name", caseInsensitive), uniqueIndex("email", nil)},
		productsCollection:   {uniqueIndex("name", caseInsensitive)},
		ordersCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		paymentsCollection: {uniqueIndex("orderId", nil)},
		m.config.AuditCollection: {
			{Keys: bson.D{{Key: "entity_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := m.collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func (m *MongoRepository) CreateAuditLog(ctx context.Context, log *models.AuditEntry) error {
	collection := m.collection(m.config.AuditCollection)
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	_, err := collection.InsertOne(ctx, log)
	return err
}

func (m *MongoRepository) GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*models.AuditEntry, error) {
	collection := m.collection(m.config.AuditCollection)

	filter := bson.M{"entity_id": entityID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []*models.AuditEntry
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

// writeErr maps driver write failures onto the storage sentinels.
func writeErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", models.ErrDuplicate, err)
	}
	return err
}

// decodeOne decodes a single result, mapping a missing document to
// models.ErrNotFound.
func decodeOne(res *mongo.SingleResult, out interface{}) error {
	if err := res.Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ErrNotFound
		}
		return writeErr(err)
	}
	return nil
}

// conditionErr tells a missing document apart from a failed update
// condition after a conditional write matched nothing.
func (m *MongoRepository) conditionErr(ctx context.Context, coll string, id primitive.ObjectID) error {
	n, err := m.collection(coll).CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return models.ErrConditionFailed
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

var (
	oldestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)
)
