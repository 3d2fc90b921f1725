package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ravinder1302/ARS-Kart/middleware"
	"github.com/ravinder1302/ARS-Kart/services"
)

// OrderServiceAPI is the surface the controller needs from the order service.
type OrderServiceAPI interface {
	PlaceOrder(ctx context.Context, userID string, req *services.PlaceOrderRequest) (*services.PlaceOrderResult, *services.ServiceError)
	GetUserOrders(ctx context.Context, userID string) ([]services.OrderDetail, *services.ServiceError)
	GetOrderByID(ctx context.Context, userID, orderID string) (*services.OrderDetail, *services.ServiceError)
	GetAllOrders(ctx context.Context) ([]services.OrderDetail, *services.ServiceError)
	UpdateStatus(ctx context.Context, orderID, newStatus string) (*services.OrderDetail, *services.ServiceError)
}

type OrderController struct {
	orderService OrderServiceAPI
}

func NewOrderController(orderService OrderServiceAPI) *OrderController {
	return &OrderController{orderService: orderService}
}

// PlaceOrder handles order creation requests
func (oc *OrderController) PlaceOrder(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.PlaceOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	result, serviceErr := oc.orderService.PlaceOrder(ctx.Request.Context(), userID, &req)
	if serviceErr != nil {
		if serviceErr.StatusCode >= http.StatusInternalServerError {
			middleware.CountOrderPlaced("write_failure")
		} else {
			middleware.CountOrderPlaced("rejected")
		}
		respondServiceError(ctx, serviceErr)
		return
	}

	middleware.CountOrderPlaced("completed")
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"orderId": result.OrderID,
	})
}

// GetOrders returns the authenticated user's orders
func (oc *OrderController) GetOrders(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orders, serviceErr := oc.orderService.GetUserOrders(ctx.Request.Context(), userID)
	if serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// GetOrderByID returns a specific order for the authenticated user
func (oc *OrderController) GetOrderByID(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, serviceErr := oc.orderService.GetOrderByID(ctx.Request.Context(), userID, ctx.Param("id"))
	if serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// GetAllOrders returns all orders (admin only)
func (oc *OrderController) GetAllOrders(ctx *gin.Context) {
	orders, serviceErr := oc.orderService.GetAllOrders(ctx.Request.Context())
	if serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// UpdateOrderStatus transitions an order's fulfillment status (admin only)
func (oc *OrderController) UpdateOrderStatus(ctx *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, serviceErr := oc.orderService.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), req.Status)
	if serviceErr != nil {
		respondServiceError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// respondServiceError maps a ServiceError onto the response, including any
// structured details (e.g. missing product IDs).
func respondServiceError(ctx *gin.Context, serviceErr *services.ServiceError) {
	body := gin.H{"error": serviceErr.Message}
	for k, v := range serviceErr.Details {
		body[k] = v
	}
	ctx.JSON(serviceErr.StatusCode, body)
}
