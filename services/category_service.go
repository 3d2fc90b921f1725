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

type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, *ServiceError) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		zap.L().Error("Failed to fetch categories", zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to fetch categories")
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, *ServiceError) {
	if name == "" {
		return nil, newServiceError(http.StatusBadRequest, "Category name is required")
	}

	if _, err := s.categoryRepo.FindByName(ctx, name); err == nil {
		return nil, newServiceError(http.StatusBadRequest, "Category already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		zap.L().Error("Failed to check category", zap.String("name", name), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to create category")
	}

	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		zap.L().Error("Failed to create category", zap.String("name", name), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to create category")
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) *ServiceError {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return newServiceError(http.StatusBadRequest, "Invalid category ID format")
	}

	deleted, err := s.categoryRepo.Delete(ctx, oid)
	if err != nil {
		zap.L().Error("Failed to delete category", zap.String("category_id", id), zap.Error(err))
		return newServiceError(http.StatusInternalServerError, "Failed to delete category")
	}
	if deleted == 0 {
		return newServiceError(http.StatusNotFound, "Category not found")
	}
	return nil
}
