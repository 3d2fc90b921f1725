package repository

import (
	"context"
	"time"

	"github.com/ravinder1302/ARS-Kart/database"
	"github.com/ravinder1302/ARS-Kart/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CartRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartLine, error)
	AddLine(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (int64, error)
	DeleteLine(ctx context.Context, userID, productID primitive.ObjectID) (int64, error)
	DeleteByUserAndProducts(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) error
	DeleteAllByUser(ctx context.Context, userID primitive.ObjectID) error
}

type MongoCartRepository struct {
	collection *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) CartRepository {
	return &MongoCartRepository{collection: db.Collection(database.CollectionCarts)}
}

func (r *MongoCartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartLine, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lines []models.CartLine
	if err = cursor.All(ctx, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// AddLine upserts a cart line: adding a product already in the cart bumps its
// quantity. Relies on the unique (user_id, product_id) index.
func (r *MongoCartRepository) AddLine(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	now := time.Now().UTC()
	filter := bson.M{"user_id": userID, "product_id": productID}
	update := bson.M{
		"$inc":         bson.M{"quantity": quantity},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"user_id": userID, "product_id": productID, "created_at": now},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoCartRepository) SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (int64, error) {
	filter := bson.M{"user_id": userID, "product_id": productID}
	update := bson.M{"$set": bson.M{"quantity": quantity, "updated_at": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

func (r *MongoCartRepository) DeleteLine(ctx context.Context, userID, productID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "product_id": productID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// DeleteByUserAndProducts removes the cart lines for the given products.
// Delete-by-filter is naturally idempotent: running it twice leaves the cart
// in the same state as running it once.
func (r *MongoCartRepository) DeleteByUserAndProducts(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{
		"user_id":    userID,
		"product_id": bson.M{"$in": productIDs},
	})
	return err
}

func (r *MongoCartRepository) DeleteAllByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
