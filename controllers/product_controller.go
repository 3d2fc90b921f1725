package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ravinder1302/ARS-Kart/services"
)

type ProductController struct {
	productService *services.ProductService
}

func NewProductController(productService *services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ListProducts returns a paginated, filterable product listing
func (pc *ProductController) ListProducts(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	category := ctx.Query("category")
	search := ctx.Query("search")

	result, serviceErr := pc.productService.List(ctx.Request.Context(), page, limit, category, search)
	if serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// GetProduct returns a single product by ID
func (pc *ProductController) GetProduct(ctx *gin.Context) {
	product, serviceErr := pc.productService.Get(ctx.Request.Context(), ctx.Param("id"))
	if serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, product)
}

// CreateProduct adds a product to the catalog (admin only)
func (pc *ProductController) CreateProduct(ctx *gin.Context) {
	var req services.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, serviceErr := pc.productService.Create(ctx.Request.Context(), &req)
	if serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusCreated, product)
}

// UpdateProduct updates a product (admin only)
func (pc *ProductController) UpdateProduct(ctx *gin.Context) {
	var req services.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if serviceErr := pc.productService.Update(ctx.Request.Context(), ctx.Param("id"), &req); serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Product updated successfully"})
}

// DeleteProduct removes a product (admin only)
func (pc *ProductController) DeleteProduct(ctx *gin.Context) {
	if serviceErr := pc.productService.Delete(ctx.Request.Context(), ctx.Param("id")); serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// PresignImageUpload returns a presigned S3 PUT URL for a product image
// (admin only)
func (pc *ProductController) PresignImageUpload(ctx *gin.Context) {
	filename := ctx.Query("filename")
	contentType := ctx.Query("content_type")
	if filename == "" || contentType == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "filename and content_type query parameters are required"})
		return
	}

	result, serviceErr := pc.productService.PresignImageUpload(ctx.Request.Context(), ctx.Param("id"), filename, contentType)
	if serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// parsePaginationParams extracts and validates pagination parameters
func parsePaginationParams(ctx *gin.Context) (int, int) {
	const MaxLimit = 100
	const DefaultPage = 1
	const DefaultLimit = 10

	pageInt := DefaultPage
	limitInt := DefaultLimit

	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		pageInt = p
	}
	if l, err := strconv.Atoi(ctx.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limitInt = l
		if limitInt > MaxLimit {
			limitInt = MaxLimit
		}
	}

	return pageInt, limitInt
}
