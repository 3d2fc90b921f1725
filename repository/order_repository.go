package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ravinder1302/ARS-Kart/database"
	"github.com/ravinder1302/ARS-Kart/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// OrderRepository defines the interface for order data access. CreateAggregate
// is the consistency-critical operation: the order header, payment record and
// every line item become visible together or not at all.
type OrderRepository interface {
	CreateAggregate(ctx context.Context, order *models.Order, payment *models.Payment, lines []models.OrderLine) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	FindByIDAndUser(ctx context.Context, orderID, userID primitive.ObjectID) (*models.Order, error)
	FindByID(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error)
	FindLinesByOrderIDs(ctx context.Context, orderIDs []primitive.ObjectID) ([]models.OrderLine, error)
	UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
}

type MongoOrderRepository struct {
	client     *mongo.Client
	orders     *mongo.Collection
	payments   *mongo.Collection
	orderItems *mongo.Collection
}

func NewMongoOrderRepository(client *mongo.Client, db *mongo.Database) OrderRepository {
	return &MongoOrderRepository{
		client:     client,
		orders:     db.Collection(database.CollectionOrders),
		payments:   db.Collection(database.CollectionPayments),
		orderItems: db.Collection(database.CollectionOrderItems),
	}
}

// CreateAggregate persists the order, its payment and all line items inside a
// single multi-document transaction. On any failure the transaction aborts
// and no record of the attempt remains, so callers can retry the whole
// request safely.
func (r *MongoOrderRepository) CreateAggregate(ctx context.Context, order *models.Order, payment *models.Payment, lines []models.OrderLine) error {
	now := time.Now().UTC()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	payment.OrderID = order.ID
	payment.CreatedAt = now
	payment.UpdatedAt = now

	docs := make([]interface{}, 0, len(lines))
	for i := range lines {
		lines[i].OrderID = order.ID
		docs = append(docs, lines[i])
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOptions := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := r.orders.InsertOne(sessCtx, order); err != nil {
			return nil, fmt.Errorf("insert order: %w", err)
		}
		if _, err := r.payments.InsertOne(sessCtx, payment); err != nil {
			return nil, fmt.Errorf("insert payment: %w", err)
		}
		if _, err := r.orderItems.InsertMany(sessCtx, docs); err != nil {
			return nil, fmt.Errorf("insert order items: %w", err)
		}
		return nil, nil
	}, txnOptions)
	if err != nil {
		return fmt.Errorf("order commit aborted: %w", err)
	}
	return nil
}

func (r *MongoOrderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.orders.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.orders.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrderRepository) FindByIDAndUser(ctx context.Context, orderID, userID primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.orders.FindOne(ctx, bson.M{"_id": orderID, "user_id": userID}).Decode(&order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) FindLinesByOrderIDs(ctx context.Context, orderIDs []primitive.ObjectID) ([]models.OrderLine, error) {
	cursor, err := r.orderItems.Find(ctx, bson.M{"order_id": bson.M{"$in": orderIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lines []models.OrderLine
	if err = cursor.All(ctx, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// UpdateStatus sets the fulfillment status and returns the updated order.
// Transition legality is the service's job; this is a single-field update.
func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.orders.FindOneAndUpdate(ctx, bson.M{"_id": orderID}, update, opts).Decode(&order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
