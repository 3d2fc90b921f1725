package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ravinder1302/ARS-Kart/services"
)

type CategoryController struct {
	categoryService *services.CategoryService
}

func NewCategoryController(categoryService *services.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

// ListCategories returns all categories
func (cc *CategoryController) ListCategories(ctx *gin.Context) {
	categories, serviceErr := cc.categoryService.List(ctx.Request.Context())
	if serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, categories)
}

// CreateCategory adds a category (admin only)
func (cc *CategoryController) CreateCategory(ctx *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	category, serviceErr := cc.categoryService.Create(ctx.Request.Context(), req.Name)
	if serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusCreated, category)
}

// DeleteCategory removes a category (admin only)
func (cc *CategoryController) DeleteCategory(ctx *gin.Context) {
	if serviceErr := cc.categoryService.Delete(ctx.Request.Context(), ctx.Param("id")); serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
