package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ravinder1302/ARS-Kart/models"
	awsx "github.com/ravinder1302/ARS-Kart/pkg/aws"
	"github.com/ravinder1302/ARS-Kart/repository"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ProductRequest struct {
	Name        string        `json:"name" binding:"required"`
	Brand       string        `json:"brand"`
	Category    string        `json:"category"`
	Price       *models.Money `json:"price" binding:"required"`
	Description string        `json:"description"`
	ImageURL    string        `json:"image_url"`
}

type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Meta     MetaData         `json:"meta"`
}

type MetaData struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

type PresignResponse struct {
	UploadURL string `json:"upload_url"`
	Method    string `json:"method"`
	Key       string `json:"key"`
	PublicURL string `json:"public_url"`
	ExpiresIn int    `json:"expires_in"`
}

// ProductService serves catalog reads through the cache and handles admin
// catalog writes.
type ProductService struct {
	productRepo repository.ProductRepository
	cache       *productCache
	presigner   *awsx.S3Presigner
}

func NewProductService(productRepo repository.ProductRepository, redisClient *redis.Client, presigner *awsx.S3Presigner) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		cache:       newProductCache(redisClient),
		presigner:   presigner,
	}
}

func (s *ProductService) List(ctx context.Context, page, limit int, category, search string) (*ProductListResponse, *ServiceError) {
	if cached, ok := s.cache.GetList(ctx, page, limit, category, search); ok {
		return cached, nil
	}

	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	if search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	products, total, err := s.productRepo.Find(ctx, filter, page, limit)
	if err != nil {
		zap.L().Error("Failed to fetch products", zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to fetch products")
	}
	if products == nil {
		products = []models.Product{}
	}

	response := &ProductListResponse{
		Products: products,
		Meta: MetaData{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasMore: total > int64(page*limit),
		},
	}
	s.cache.SetListAsync(page, limit, category, search, response)
	return response, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, newServiceError(http.StatusBadRequest, "Invalid product ID format")
	}

	if cached, ok := s.cache.GetProduct(ctx, id); ok {
		return cached, nil
	}

	product, err := s.productRepo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, newServiceError(http.StatusNotFound, "Product not found")
		}
		zap.L().Error("Failed to fetch product", zap.String("product_id", id), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to fetch product")
	}

	s.cache.SetProductAsync(id, product)
	return product, nil
}

func (s *ProductService) Create(ctx context.Context, req *ProductRequest) (*models.Product, *ServiceError) {
	if req.Price == nil || req.Price.IsNegative() {
		return nil, newServiceError(http.StatusBadRequest, "Price must be a non-negative amount")
	}

	product := &models.Product{
		Name:        req.Name,
		Brand:       req.Brand,
		Category:    req.Category,
		Price:       *req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		zap.L().Error("Failed to create product", zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to create product")
	}

	s.cache.Invalidate(ctx, "")
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id string, req *ProductRequest) *ServiceError {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid product ID format")
	}
	if req.Price == nil || req.Price.IsNegative() {
		return newServiceError(http.StatusBadRequest, "Price must be a non-negative amount")
	}

	updates := bson.M{
		"name":        req.Name,
		"brand":       req.Brand,
		"category":    req.Category,
		"price":       *req.Price,
		"description": req.Description,
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}

	matched, err := s.productRepo.Update(ctx, oid, updates)
	if err != nil {
		zap.L().Error("Failed to update product", zap.String("product_id", id), zap.Error(err))
		return newServiceError(http.StatusInternalServerError, "Failed to update product")
	}
	if matched == 0 {
		return newServiceError(http.StatusNotFound, "Product not found")
	}

	s.cache.Invalidate(ctx, id)
	return nil
}

func (s *ProductService) Delete(ctx context.Context, id string) *ServiceError {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid product ID format")
	}

	deleted, err := s.productRepo.Delete(ctx, oid)
	if err != nil {
		zap.L().Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		return newServiceError(http.StatusInternalServerError, "Failed to delete product")
	}
	if deleted == 0 {
		return newServiceError(http.StatusNotFound, "Product not found")
	}

	s.cache.Invalidate(ctx, id)
	return nil
}

// PresignImageUpload hands the admin a presigned S3 PUT URL for a product
// image, so uploads bypass this service entirely.
func (s *ProductService) PresignImageUpload(ctx context.Context, productID, filename, contentType string) (*PresignResponse, *ServiceError) {
	if s.presigner == nil {
		return nil, newServiceError(http.StatusServiceUnavailable, "Image uploads are not configured")
	}
	if !isAllowedImageContentType(contentType) {
		return nil, newServiceError(http.StatusBadRequest, "Invalid content type. Allowed: image/jpeg, image/png, image/webp")
	}
	if _, serviceErr := s.Get(ctx, productID); serviceErr != nil {
		return nil, serviceErr
	}

	const expiry = 15 * time.Minute
	key := fmt.Sprintf("products/%s/%s-%s", productID, uuid.NewString(), sanitizeFilename(filename))

	uploadURL, publicURL, err := s.presigner.PresignPut(ctx, key, contentType, expiry)
	if err != nil {
		zap.L().Error("Failed to generate presigned upload", zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to generate presigned upload")
	}

	return &PresignResponse{
		UploadURL: uploadURL,
		Method:    "PUT",
		Key:       key,
		PublicURL: publicURL,
		ExpiresIn: int(expiry.Seconds()),
	}, nil
}

func isAllowedImageContentType(ct string) bool {
	switch ct {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}

func sanitizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "upload"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
