package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	addressControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/address"
	cartControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/cart"
	couponControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/coupon"
	orderControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/order"
	productControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/product"
	"github.com/nikhildhimann/zenmarket-ecommerce/middleware"
)

// SetupPublicRoutes registers the endpoints that need no token.
func SetupPublicRoutes(r *gin.Engine, db *gorm.DB) {
	r.GET("/products", productControllers.GetProducts(db))
	r.GET("/products/:id", productControllers.GetProductByID(db))
}

// SetupUserRoutes registers all customer endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB) {
	user := r.Group("/")
	user.Use(middleware.ValidateToken)
	{
		cart := user.Group("/cart")
		{
			cart.GET("/", cartControllers.GetUserCart(db))
			cart.POST("/items", cartControllers.AddCartItem(db))
			cart.PUT("/items/:itemID", cartControllers.UpdateCartItem(db))
			cart.DELETE("/items/:itemID", cartControllers.DeleteCartItem(db))
			cart.DELETE("/", cartControllers.ClearUserCart(db))
		}

		coupons := user.Group("/coupons")
		{
			coupons.POST("/apply", couponControllers.ApplyCouponToCart(db))
			coupons.POST("/remove", couponControllers.RemoveCouponFromCart(db))
		}

		addresses := user.Group("/addresses")
		{
			addresses.POST("/", addressControllers.CreateAddress(db))
			addresses.GET("/", addressControllers.GetMyAddresses(db))
		}

		orders := user.Group("/orders")
		{
			orders.GET("/", orderControllers.GetMyOrdersHandler(db))
			orders.GET("/:orderID", orderControllers.GetOrderByIDHandler(db))
		}
	}
}
