package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/ravinder1302/ARS-Kart/models"
	"github.com/ravinder1302/ARS-Kart/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type WishlistItemDetail struct {
	ID        string       `json:"id"`
	ProductID string       `json:"productId"`
	Name      string       `json:"name"`
	Brand     string       `json:"brand,omitempty"`
	Price     models.Money `json:"price"`
	ImageURL  string       `json:"image_url,omitempty"`
}

type WishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) *WishlistService {
	return &WishlistService{wishlistRepo: wishlistRepo, productRepo: productRepo}
}

func (s *WishlistService) GetWishlist(ctx context.Context, userID string) ([]WishlistItemDetail, *ServiceError) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, newServiceError(http.StatusBadRequest, "Invalid user ID format")
	}

	items, err := s.wishlistRepo.FindByUser(ctx, userOID)
	if err != nil {
		zap.L().Error("Failed to fetch wishlist", zap.String("user_id", userID), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Error fetching wishlist items")
	}
	if len(items) == 0 {
		return []WishlistItemDetail{}, nil
	}

	productIDs := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	found, err := s.productRepo.FindByIDs(ctx, productIDs)
	if err != nil {
		zap.L().Error("Failed to fetch wishlist products", zap.String("user_id", userID), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Error fetching wishlist items")
	}
	products := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}

	result := make([]WishlistItemDetail, 0, len(items))
	for _, item := range items {
		detail := WishlistItemDetail{
			ID:        item.ID.Hex(),
			ProductID: item.ProductID.Hex(),
			Name:      "Unknown Product",
		}
		if p, ok := products[item.ProductID]; ok {
			detail.Name = p.Name
			detail.Brand = p.Brand
			detail.Price = p.Price
			detail.ImageURL = p.ImageURL
		}
		result = append(result, detail)
	}
	return result, nil
}

func (s *WishlistService) AddItem(ctx context.Context, userID, productID string) *ServiceError {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid user ID format")
	}
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid product ID format")
	}

	if _, err := s.productRepo.FindByID(ctx, productOID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return newServiceError(http.StatusNotFound, "Product not found")
		}
		zap.L().Error("Failed to verify product", zap.String("product_id", productID), zap.Error(err))
		return newServiceError(http.StatusInternalServerError, "Failed to add to wishlist")
	}

	exists, err := s.wishlistRepo.Exists(ctx, userOID, productOID)
	if err != nil {
		zap.L().Error("Failed to check wishlist", zap.String("user_id", userID), zap.Error(err))
		return newServiceError(http.StatusInternalServerError, "Failed to add to wishlist")
	}
	if exists {
		return newServiceError(http.StatusBadRequest, "Item already in wishlist")
	}

	if err := s.wishlistRepo.Add(ctx, userOID, productOID); err != nil {
		zap.L().Error("Failed to add to wishlist", zap.String("user_id", userID), zap.Error(err))
		return newServiceError(http.StatusInternalServerError, "Failed to add to wishlist")
	}
	return nil
}

func (s *WishlistService) RemoveItem(ctx context.Context, userID, productID string) *ServiceError {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid user ID format")
	}
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid product ID format")
	}

	deleted, err := s.wishlistRepo.Remove(ctx, userOID, productOID)
	if err != nil {
		zap.L().Error("Failed to remove wishlist item", zap.String("user_id", userID), zap.Error(err))
		return newServiceError(http.StatusInternalServerError, "Failed to remove wishlist item")
	}
	if deleted == 0 {
		return newServiceError(http.StatusNotFound, "Wishlist item not found")
	}
	return nil
}
