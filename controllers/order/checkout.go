package orderControllers

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	cartControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/cart"
	"github.com/nikhildhimann/zenmarket-ecommerce/models"
	"github.com/nikhildhimann/zenmarket-ecommerce/pricing"
)

// GatewayStatusSuccess is the only callback status that confirms payment;
// anything else fails the order.
const GatewayStatusSuccess = "success"

// generateTxnRef builds the gateway transaction reference, unique per
// checkout attempt.
func generateTxnRef() string {
	return "txn-" + time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// InitiateCheckout converts the user's cart into an immutable Pending
// Payment order: items are snapshotted with current catalog prices, totals
// are fixed, and a transaction reference is generated for the gateway.
// The cart is left untouched — it is cleared only when the gateway
// confirms payment, so an abandoned payment never loses the cart. Stock is
// likewise decremented only on confirmation.
func InitiateCheckout(db *gorm.DB, userID string, addressID uint) (models.Order, error) {
	cart, err := cartControllers.GetOrCreateCart(db, userID)
	if err != nil {
		return models.Order{}, err
	}
	if len(cart.Items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	var address models.Address
	if err := db.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrAddressNotFound
		}
		return models.Order{}, err
	}

	lines, products, err := cartControllers.CartLines(db, cart.Items)
	if err != nil {
		return models.Order{}, err
	}

	totals, err := pricing.Calculate(lines, cart.Coupon)
	if err != nil {
		return models.Order{}, err
	}

	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		product := products[item.ProductID]
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
	}

	order := models.Order{
		UserID:            userID,
		ShippingAddressID: address.ID,
		Items:             orderItems,
		TotalPrice:        totals.GrandTotal,
		Status:            models.OrderStatusPendingPayment,
		PaymentInfo: models.PaymentInfo{
			ID:     generateTxnRef(),
			Status: "Pending",
		},
	}
	if cart.Coupon != nil {
		order.CouponCode = cart.Coupon.Code
	}

	if err := db.Create(&order).Error; err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// HandlePaymentCallback settles an order against a gateway callback. The
// gateway delivers at least once, so the handler must collapse duplicates:
// the Pending Payment -> Processing transition is a compare-and-set, and
// stock decrement, coupon usage and cart clearing ride on the winning
// transition only. An unknown reference returns ErrOrderNotFound without
// touching anything.
func HandlePaymentCallback(db *gorm.DB, hub *Hub, txnID, gatewayStatus string) error {
	var order models.Order
	if err := db.Preload("Items").Where("payment_id = ?", txnID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if gatewayStatus != GatewayStatusSuccess {
		res := db.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPendingPayment).
			Updates(map[string]interface{}{
				"status":         models.OrderStatusPaymentFailed,
				"payment_status": gatewayStatus,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			order.Status = models.OrderStatusPaymentFailed
			order.PaymentInfo.Status = gatewayStatus
			hub.BroadcastOrder(order)
		}
		return nil
	}

	applied := false
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPendingPayment).
			Updates(map[string]interface{}{
				"status":         models.OrderStatusProcessing,
				"payment_status": gatewayStatus,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Duplicate callback, order already settled.
			return nil
		}
		applied = true

		for _, item := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}

		if order.CouponCode != "" {
			if err := tx.Model(&models.Coupon{}).Where("code = ?", order.CouponCode).
				UpdateColumn("times_used", gorm.Expr("times_used + 1")).Error; err != nil {
				return err
			}
		}

		var cart models.Cart
		err := tx.Where("user_id = ?", order.UserID).First(&cart).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		return cartControllers.ClearCartTx(tx, cart.CartID)
	})
	if err != nil {
		return err
	}

	if applied {
		order.Status = models.OrderStatusProcessing
		order.PaymentInfo.Status = gatewayStatus
		hub.BroadcastOrder(order)
	}
	return nil
}

// SweepPendingPayments fails orders that have waited on a gateway
// callback longer than maxAge. It reuses the callback's compare-and-set,
// so a sweep racing a late success callback cannot both win.
func SweepPendingPayments(db *gorm.DB, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	res := db.Model(&models.Order{}).
		Where("status = ? AND created_at < ?", models.OrderStatusPendingPayment, cutoff).
		Updates(map[string]interface{}{
			"status":         models.OrderStatusPaymentFailed,
			"payment_status": "Timed Out",
		})
	return res.RowsAffected, res.Error
}

// StartPendingPaymentSweeper runs SweepPendingPayments on a fixed
// interval. Meant to be launched once from main.
func StartPendingPaymentSweeper(db *gorm.DB, interval, maxAge time.Duration) {
	for {
		time.Sleep(interval)
		n, err := SweepPendingPayments(db, maxAge)
		if err != nil {
			log.Printf("pending-payment sweep failed: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("pending-payment sweep: failed %d stale order(s)", n)
		}
	}
}
