package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ravinder1302/ARS-Kart/middleware"
	"github.com/ravinder1302/ARS-Kart/services"
)

type WishlistController struct {
	wishlistService *services.WishlistService
}

func NewWishlistController(wishlistService *services.WishlistService) *WishlistController {
	return &WishlistController{wishlistService: wishlistService}
}

// GetWishlist returns the caller's wishlist joined with product details
func (wc *WishlistController) GetWishlist(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, serviceErr := wc.wishlistService.GetWishlist(ctx.Request.Context(), userID)
	if serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

// AddItem adds a product to the wishlist
func (wc *WishlistController) AddItem(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
		return
	}

	if serviceErr := wc.wishlistService.AddItem(ctx.Request.Context(), userID, req.ProductID); serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Added to wishlist successfully"})
}

// RemoveItem deletes a product from the wishlist
func (wc *WishlistController) RemoveItem(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if serviceErr := wc.wishlistService.RemoveItem(ctx.Request.Context(), userID, ctx.Param("productId")); serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist successfully"})
}
