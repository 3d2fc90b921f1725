package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionProducts   = "products"
	CollectionCategories = "categories"
	CollectionCarts      = "carts"
	CollectionWishlists  = "wishlists"
	CollectionOrders     = "orders"
	CollectionPayments   = "payments"
	CollectionOrderItems = "orderitems"
)

// Mongo wraps the client and database handle so callers get an explicitly
// constructed dependency instead of a package-level global.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect dials MongoDB and verifies connectivity with a ping.
func Connect(ctx context.Context, uri, dbName string) (*Mongo, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(dialCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &Mongo{Client: client, DB: client.Database(dbName)}, nil
}

// EnsureIndexes creates the indexes the storefront relies on. The (user,
// product) unique index on carts is what makes cart-clear idempotent and
// add-to-cart an upsert.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	userProduct := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := m.DB.Collection(CollectionCarts).Indexes().CreateOne(ctx, userProduct); err != nil {
		return fmt.Errorf("create cart index: %w", err)
	}
	if _, err := m.DB.Collection(CollectionWishlists).Indexes().CreateOne(ctx, userProduct); err != nil {
		return fmt.Errorf("create wishlist index: %w", err)
	}
	orderUser := mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}}
	if _, err := m.DB.Collection(CollectionOrders).Indexes().CreateOne(ctx, orderUser); err != nil {
		return fmt.Errorf("create order index: %w", err)
	}
	itemOrder := mongo.IndexModel{Keys: bson.D{{Key: "order_id", Value: 1}}}
	if _, err := m.DB.Collection(CollectionOrderItems).Indexes().CreateOne(ctx, itemOrder); err != nil {
		return fmt.Errorf("create order item index: %w", err)
	}
	return nil
}

// Close disconnects with a bounded timeout.
func (m *Mongo) Close(ctx context.Context) error {
	disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(disconnectCtx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}
