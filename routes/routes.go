package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/ravinder1302/ARS-Kart/controllers"
	"github.com/ravinder1302/ARS-Kart/middleware"
)

// Controllers bundles everything Register wires into the engine.
type Controllers struct {
	Orders     *controllers.OrderController
	Products   *controllers.ProductController
	Categories *controllers.CategoryController
	Cart       *controllers.CartController
	Wishlist   *controllers.WishlistController
}

// Register mounts all storefront and admin routes under /api.
func Register(r *gin.Engine, c Controllers, jwtSecret []byte) {
	auth := middleware.Auth(jwtSecret)

	api := r.Group("/api")

	products := api.Group("/products")
	products.GET("", c.Products.ListProducts)
	products.GET("/:id", c.Products.GetProduct)

	categories := api.Group("/categories")
	categories.GET("", c.Categories.ListCategories)

	cart := api.Group("/cart")
	cart.Use(auth)
	cart.GET("", c.Cart.GetCart)
	cart.POST("", c.Cart.AddItem)
	cart.PUT("/:productId", c.Cart.UpdateQuantity)
	cart.DELETE("/:productId", c.Cart.RemoveItem)
	cart.DELETE("", c.Cart.ClearCart)

	wishlist := api.Group("/wishlist")
	wishlist.Use(auth)
	wishlist.GET("", c.Wishlist.GetWishlist)
	wishlist.POST("", c.Wishlist.AddItem)
	wishlist.DELETE("/:productId", c.Wishlist.RemoveItem)

	orders := api.Group("/orders")
	orders.Use(auth)
	orders.POST("", c.Orders.PlaceOrder)
	orders.GET("", c.Orders.GetOrders)
	orders.GET("/:id", c.Orders.GetOrderByID)

	admin := api.Group("/admin")
	admin.Use(auth, middleware.AdminOnly())
	admin.GET("/orders", c.Orders.GetAllOrders)
	admin.PUT("/orders/:id/status", c.Orders.UpdateOrderStatus)
	admin.POST("/products", c.Products.CreateProduct)
	admin.PUT("/products/:id", c.Products.UpdateProduct)
	admin.DELETE("/products/:id", c.Products.DeleteProduct)
	admin.POST("/products/:id/image-upload", c.Products.PresignImageUpload)
	admin.POST("/categories", c.Categories.CreateCategory)
	admin.DELETE("/categories/:id", c.Categories.DeleteCategory)
}
