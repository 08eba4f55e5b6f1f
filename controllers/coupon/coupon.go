package couponControllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	cartControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/cart"
	"github.com/nikhildhimann/zenmarket-ecommerce/models"
	"github.com/nikhildhimann/zenmarket-ecommerce/pricing"
)

var (
	ErrCouponNotFound       = errors.New("invalid or expired coupon code")
	ErrBelowMinimumPurchase = errors.New("cart subtotal is below the coupon minimum purchase")
	ErrEmptyCart            = errors.New("cart is empty")
)

type CreateCouponInput struct {
	Code           string          `json:"code" binding:"required"`
	DiscountType   string          `json:"discount_type" binding:"required"`
	DiscountAmount decimal.Decimal `json:"discount_amount" binding:"required"`
	ExpiryDate     time.Time       `json:"expiry_date" binding:"required"`
	MinPurchase    decimal.Decimal `json:"min_purchase"`
	UsageLimit     int             `json:"usage_limit"`
}

type ApplyCouponInput struct {
	Code string `json:"code" binding:"required"`
}

// FindValidCoupon looks a coupon up by its normalized code. Expired and
// usage-exhausted coupons are indistinguishable from absent ones.
func FindValidCoupon(db *gorm.DB, code string, now time.Time) (*models.Coupon, error) {
	var coupon models.Coupon
	err := db.Where("code = ? AND expiry_date > ?", strings.ToUpper(strings.TrimSpace(code)), now).
		First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	if coupon.UsageLimit > 0 && coupon.TimesUsed >= coupon.UsageLimit {
		return nil, ErrCouponNotFound
	}
	return &coupon, nil
}

// CheckEligibility gates a coupon on the cart's current subtotal.
func CheckEligibility(coupon *models.Coupon, subtotal decimal.Decimal) error {
	if subtotal.LessThan(coupon.MinPurchase) {
		return ErrBelowMinimumPurchase
	}
	return nil
}

func validateCouponInput(input CreateCouponInput) (models.DiscountType, error) {
	switch models.DiscountType(input.DiscountType) {
	case models.DiscountPercentage:
		if input.DiscountAmount.LessThanOrEqual(decimal.Zero) || input.DiscountAmount.GreaterThan(decimal.NewFromInt(100)) {
			return "", errors.New("percentage discount must be between 0 and 100")
		}
		return models.DiscountPercentage, nil
	case models.DiscountFixed:
		if input.DiscountAmount.LessThanOrEqual(decimal.Zero) {
			return "", errors.New("fixed discount must be positive")
		}
		return models.DiscountFixed, nil
	default:
		return "", errors.New("discount type must be 'percentage' or 'fixed'")
	}
}

// -------- Handlers --------

// POST /admin/coupons
func CreateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateCouponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		discountType, err := validateCouponInput(input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		coupon := models.Coupon{
			Code:           strings.ToUpper(strings.TrimSpace(input.Code)),
			DiscountType:   discountType,
			DiscountAmount: input.DiscountAmount,
			ExpiryDate:     input.ExpiryDate,
			MinPurchase:    input.MinPurchase,
			UsageLimit:     input.UsageLimit,
		}
		if err := db.Create(&coupon).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Failed to create coupon, code may already exist"})
			return
		}
		c.JSON(http.StatusCreated, coupon)
	}
}

// GET /admin/coupons
func GetAllCoupons(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var coupons []models.Coupon
		if err := db.Order("created_at DESC").Find(&coupons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupons"})
			return
		}
		c.JSON(http.StatusOK, coupons)
	}
}

// DELETE /admin/coupons/:couponID
func DeleteCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("couponID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "couponID must be numeric"})
			return
		}

		res := db.Delete(&models.Coupon{}, uint(id))
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete coupon"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted"})
	}
}

// ApplyToCart validates the coupon, checks eligibility against the cart's
// current subtotal and attaches the reference. The deduction itself is
// snapshotted into the order only at checkout.
func ApplyToCart(db *gorm.DB, userID, code string, now time.Time) (models.Cart, error) {
	coupon, err := FindValidCoupon(db, code, now)
	if err != nil {
		return models.Cart{}, err
	}

	cart, err := cartControllers.GetOrCreateCart(db, userID)
	if err != nil {
		return models.Cart{}, err
	}
	if len(cart.Items) == 0 {
		return models.Cart{}, ErrEmptyCart
	}

	lines, _, err := cartControllers.CartLines(db, cart.Items)
	if err != nil {
		return models.Cart{}, err
	}
	totals, err := pricing.Calculate(lines, nil)
	if err != nil {
		return models.Cart{}, err
	}
	if err := CheckEligibility(coupon, totals.Subtotal); err != nil {
		return models.Cart{}, err
	}

	if err := db.Model(&models.Cart{}).Where("cart_id = ?", cart.CartID).
		Update("coupon_id", coupon.ID).Error; err != nil {
		return models.Cart{}, err
	}
	return cartControllers.GetOrCreateCart(db, userID)
}

// POST /coupons/apply
func ApplyCouponToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var input ApplyCouponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Coupon code is required"})
			return
		}

		cart, err := ApplyToCart(db, userID, input.Code, time.Now())
		if err != nil {
			switch {
			case errors.Is(err, ErrCouponNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrBelowMinimumPurchase):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply coupon"})
			}
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /coupons/remove
func RemoveCouponFromCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		cart, err := cartControllers.GetOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		if err := db.Model(&models.Cart{}).Where("cart_id = ?", cart.CartID).
			Update("coupon_id", nil).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove coupon"})
			return
		}
		cart, _ = cartControllers.GetOrCreateCart(db, userID)
		c.JSON(http.StatusOK, cart)
	}
}
