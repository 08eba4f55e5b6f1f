package orderControllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nikhildhimann/zenmarket-ecommerce/models"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOrderNotFound     = errors.New("order not found")
	ErrAddressNotFound   = errors.New("shipping address not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("order is already delivered")
	ErrNotOrderOwner     = errors.New("not authorized to view this order")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// mapOrderStatus normalizes a client-supplied status string.
func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "pending payment":
		return models.OrderStatusPendingPayment, nil
	case "processing":
		return models.OrderStatusProcessing, nil
	case "shipped":
		return models.OrderStatusShipped, nil
	case "delivered":
		return models.OrderStatusDelivered, nil
	case "cancelled":
		return models.OrderStatusCancelled, nil
	case "payment failed":
		return models.OrderStatusPaymentFailed, nil
	default:
		return "", ErrInvalidStatus
	}
}

// stockWasTaken reports whether an order in the given state has had its
// stock decremented (the success callback ran).
func stockWasTaken(status models.OrderStatus) bool {
	return status == models.OrderStatusProcessing || status == models.OrderStatusShipped
}

// UpdateOrderStatus applies an administrative transition. Delivered is
// terminal; moving there stamps the delivery time. Cancelling an order
// whose stock was already taken puts the units back.
func UpdateOrderStatus(db *gorm.DB, hub *Hub, orderID uint, status string) (models.Order, error) {
	newStatus, err := mapOrderStatus(status)
	if err != nil {
		return models.Order{}, err
	}

	var order models.Order
	if err := db.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrOrderNotFound
		}
		return models.Order{}, err
	}

	if order.Status == models.OrderStatusDelivered {
		return models.Order{}, ErrInvalidTransition
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": newStatus}
		if newStatus == models.OrderStatusDelivered {
			now := time.Now()
			updates["delivered_at"] = now
		}

		if newStatus == models.OrderStatusCancelled && stockWasTaken(order.Status) {
			for _, item := range order.Items {
				if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error
	})
	if err != nil {
		return models.Order{}, err
	}

	if err := db.Preload("Items").First(&order, orderID).Error; err != nil {
		return models.Order{}, err
	}
	hub.BroadcastOrder(order)
	return order, nil
}

// -------- Handlers --------

// GET /orders
func GetMyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var orders []models.Order
		if err := db.Preload("Items").
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:orderID
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		role := c.GetString("role")

		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID must be numeric"})
			return
		}

		var order models.Order
		if err := db.Preload("Items").First(&order, uint(orderID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		if order.UserID != userID && role != string(models.RoleAdmin) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": ErrNotOrderOwner.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /admin/orders
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// PUT /admin/orders/:orderID/status
func UpdateOrderStatusHandler(db *gorm.DB, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID must be numeric"})
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := UpdateOrderStatus(db, hub, uint(orderID), req.Status)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidStatus):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, ErrInvalidTransition):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.Is(err, ErrOrderNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
			}
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
