package repository

import (
	"context"
	"time"

	"github.com/ravinder1302/ARS-Kart/database"
	"github.com/ravinder1302/ARS-Kart/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type WishlistRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.WishlistItem, error)
	Exists(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
	Add(ctx context.Context, userID, productID primitive.ObjectID) error
	Remove(ctx context.Context, userID, productID primitive.ObjectID) (int64, error)
}

type MongoWishlistRepository struct {
	collection *mongo.Collection
}

func NewMongoWishlistRepository(db *mongo.Database) WishlistRepository {
	return &MongoWishlistRepository{collection: db.Collection(database.CollectionWishlists)}
}

func (r *MongoWishlistRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.WishlistItem, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.WishlistItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoWishlistRepository) Exists(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "product_id": productID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoWishlistRepository) Add(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := r.collection.InsertOne(ctx, models.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	})
	return err
}

func (r *MongoWishlistRepository) Remove(ctx context.Context, userID, productID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "product_id": productID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
