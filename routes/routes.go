package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/order"
)

// SetupRoutes is the single entry-point that wires up public, user, admin
// and payment route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, hub *orderControllers.Hub) {
	SetupPublicRoutes(r, db)
	SetupUserRoutes(r, db)
	SetupAdminRoutes(r, db, hub)
	SetupPaymentRoutes(r, db, hub)
}
