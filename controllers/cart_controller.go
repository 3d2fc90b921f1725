package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ravinder1302/ARS-Kart/middleware"
	"github.com/ravinder1302/ARS-Kart/services"
)

type CartController struct {
	cartService *services.CartService
}

func NewCartController(cartService *services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCart returns the caller's cart joined with product details
func (cc *CartController) GetCart(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, serviceErr := cc.cartService.GetCart(ctx.Request.Context(), userID)
	if serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

// AddItem adds a product to the cart or bumps its quantity
func (cc *CartController) AddItem(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
		return
	}

	if serviceErr := cc.cartService.AddItem(ctx.Request.Context(), userID, req.ProductID, req.Quantity); serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Added to cart successfully"})
}

// UpdateQuantity sets a cart line's quantity
func (cc *CartController) UpdateQuantity(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be at least 1"})
		return
	}

	if serviceErr := cc.cartService.UpdateQuantity(ctx.Request.Context(), userID, ctx.Param("productId"), req.Quantity); serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Cart updated successfully"})
}

// RemoveItem deletes one cart line
func (cc *CartController) RemoveItem(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if serviceErr := cc.cartService.RemoveItem(ctx.Request.Context(), userID, ctx.Param("productId")); serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Removed from cart successfully"})
}

// ClearCart empties the caller's cart
func (cc *CartController) ClearCart(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if serviceErr := cc.cartService.ClearCart(ctx.Request.Context(), userID); serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully"})
}
