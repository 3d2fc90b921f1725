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

// CartLineDetail is a cart line joined with its product record.
type CartLineDetail struct {
	ID          string       `json:"id"`
	ProductID   string       `json:"productId"`
	Name        string       `json:"name"`
	Price       models.Money `json:"price"`
	Quantity    int          `json:"quantity"`
	Description string       `json:"description,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	Category    string       `json:"category,omitempty"`
}

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *CartService) GetCart(ctx context.Context, userID string) ([]CartLineDetail, *ServiceError) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, newServiceError(http.StatusBadRequest, "Invalid user ID format")
	}

	lines, err := s.cartRepo.FindByUser(ctx, userOID)
	if err != nil {
		zap.L().Error("Failed to fetch cart", zap.String("user_id", userID), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to fetch cart items")
	}
	if len(lines) == 0 {
		return []CartLineDetail{}, nil
	}

	productIDs := make([]primitive.ObjectID, 0, len(lines))
	for _, l := range lines {
		productIDs = append(productIDs, l.ProductID)
	}
	found, err := s.productRepo.FindByIDs(ctx, productIDs)
	if err != nil {
		zap.L().Error("Failed to fetch cart products", zap.String("user_id", userID), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to fetch cart items")
	}
	products := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}

	result := make([]CartLineDetail, 0, len(lines))
	for _, l := range lines {
		detail := CartLineDetail{
			ID:        l.ID.Hex(),
			ProductID: l.ProductID.Hex(),
			Name:      "Unknown Product",
			Quantity:  l.Quantity,
		}
		if p, ok := products[l.ProductID]; ok {
			detail.Name = p.Name
			detail.Price = p.Price
			detail.Description = p.Description
			detail.ImageURL = p.ImageURL
			detail.Category = p.Category
		}
		result = append(result, detail)
	}
	return result, nil
}

// AddItem adds a product to the cart, bumping the quantity when the line
// already exists.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) *ServiceError {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid user ID format")
	}
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid product ID format")
	}
	if quantity < 1 {
		quantity = 1
	}

	if _, err := s.productRepo.FindByID(ctx, productOID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return newServiceError(http.StatusNotFound, "Product not found")
		}
		zap.L().Error("Failed to verify product", zap.String("product_id", productID), zap.Error(err))
		return newServiceError(http.StatusInternalServerError, "Failed to add to cart")
	}

	if err := s.cartRepo.AddLine(ctx, userOID, productOID, quantity); err != nil {
		zap.L().Error("Failed to add to cart", zap.String("user_id", userID), zap.Error(err))
		return newServiceError(http.StatusInternalServerError, "Failed to add to cart")
	}
	return nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) *ServiceError {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid user ID format")
	}
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid product ID format")
	}
	if quantity < 1 {
		return newServiceError(http.StatusBadRequest, "Quantity must be at least 1")
	}

	matched, err := s.cartRepo.SetQuantity(ctx, userOID, productOID, quantity)
	if err != nil {
		zap.L().Error("Failed to update cart quantity", zap.String("user_id", userID), zap.Error(err))
		return newServiceError(http.StatusInternalServerError, "Failed to update cart item")
	}
	if matched == 0 {
		return newServiceError(http.StatusNotFound, "Cart item not found")
	}
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) *ServiceError {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid user ID format")
	}
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid product ID format")
	}

	deleted, err := s.cartRepo.DeleteLine(ctx, userOID, productOID)
	if err != nil {
		zap.L().Error("Failed to remove cart item", zap.String("user_id", userID), zap.Error(err))
		return newServiceError(http.StatusInternalServerError, "Failed to remove cart item")
	}
	if deleted == 0 {
		return newServiceError(http.StatusNotFound, "Cart item not found")
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) *ServiceError {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid user ID format")
	}

	if err := s.cartRepo.DeleteAllByUser(ctx, userOID); err != nil {
		zap.L().Error("Failed to clear cart", zap.String("user_id", userID), zap.Error(err))
		return newServiceError(http.StatusInternalServerError, "Failed to clear cart")
	}
	return nil
}
