package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	couponControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/coupon"
	orderControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/order"
	productControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/product"
	"github.com/nikhildhimann/zenmarket-ecommerce/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires a token
// carrying the admin role.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, hub *orderControllers.Hub) {
	admin := r.Group("/admin")
	admin.Use(middleware.ValidateToken, middleware.RequireAdmin)
	{
		products := admin.Group("/products")
		{
			products.POST("/", productControllers.CreateProduct(db))
			products.PUT("/:id", productControllers.UpdateProduct(db))
			products.DELETE("/:id", productControllers.DeleteProduct(db))
		}

		coupons := admin.Group("/coupons")
		{
			coupons.POST("/", couponControllers.CreateCoupon(db))
			coupons.GET("/", couponControllers.GetAllCoupons(db))
			coupons.DELETE("/:couponID", couponControllers.DeleteCoupon(db))
		}

		orders := admin.Group("/orders")
		{
			orders.GET("/", orderControllers.GetAllOrdersHandler(db))
			orders.GET("/export", orderControllers.ExportOrdersToExcel(db))
			orders.GET("/ws", hub.Handler())
			orders.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db, hub))
		}
	}
}
