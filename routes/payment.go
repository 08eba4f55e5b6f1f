package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/order"
	paymentControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/payment"
	"github.com/nikhildhimann/zenmarket-ecommerce/middleware"
)

func SetupPaymentRoutes(r *gin.Engine, db *gorm.DB, hub *orderControllers.Hub) {
	payment := r.Group("/payment/payu")
	{
		// Checkout initiation: builds the signed redirect payload.
		payment.POST("/process",
			middleware.ValidateToken,
			paymentControllers.ProcessPaymentHandler(db),
		)

		// Gateway callbacks: hash-verified before any state changes.
		payment.POST("/success",
			middleware.PayuCallbackAuth(),
			paymentControllers.PayuSuccessHandler(db, hub),
		)
		payment.POST("/failure",
			middleware.PayuCallbackAuth(),
			paymentControllers.PayuFailureHandler(db, hub),
		)
	}
}
