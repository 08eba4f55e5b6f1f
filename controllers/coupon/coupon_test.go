package couponControllers

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	cartControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/cart"
	"github.com/nikhildhimann/zenmarket-ecommerce/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Coupon{},
	))
	return db
}

func seedCoupon(t *testing.T, db *gorm.DB, coupon models.Coupon) models.Coupon {
	t.Helper()
	if coupon.ExpiryDate.IsZero() {
		coupon.ExpiryDate = time.Now().Add(24 * time.Hour)
	}
	require.NoError(t, db.Create(&coupon).Error)
	return coupon
}

func TestFindValidCouponNormalizesCode(t *testing.T) {
	db := openTestDB(t)
	seedCoupon(t, db, models.Coupon{
		Code:           "SAVE10",
		DiscountType:   models.DiscountPercentage,
		DiscountAmount: decimal.RequireFromString("10"),
	})

	coupon, err := FindValidCoupon(db, "  save10 ", time.Now())
	require.NoError(t, err)
	require.Equal(t, "SAVE10", coupon.Code)
}

func TestFindValidCouponExpired(t *testing.T) {
	db := openTestDB(t)
	seedCoupon(t, db, models.Coupon{
		Code:           "OLD",
		DiscountType:   models.DiscountFixed,
		DiscountAmount: decimal.RequireFromString("5"),
		ExpiryDate:     time.Now().Add(-time.Hour),
	})

	_, err := FindValidCoupon(db, "OLD", time.Now())
	require.ErrorIs(t, err, ErrCouponNotFound)
}

func TestFindValidCouponExhausted(t *testing.T) {
	db := openTestDB(t)
	seedCoupon(t, db, models.Coupon{
		Code:           "ONCE",
		DiscountType:   models.DiscountFixed,
		DiscountAmount: decimal.RequireFromString("5"),
		UsageLimit:     1,
		TimesUsed:      1,
	})

	_, err := FindValidCoupon(db, "ONCE", time.Now())
	require.ErrorIs(t, err, ErrCouponNotFound)
}

func TestFindValidCouponAbsent(t *testing.T) {
	db := openTestDB(t)

	_, err := FindValidCoupon(db, "NOPE", time.Now())
	require.ErrorIs(t, err, ErrCouponNotFound)
}

func TestCheckEligibility(t *testing.T) {
	coupon := &models.Coupon{MinPurchase: decimal.RequireFromString("100")}

	require.ErrorIs(t, CheckEligibility(coupon, decimal.RequireFromString("99.99")), ErrBelowMinimumPurchase)
	require.NoError(t, CheckEligibility(coupon, decimal.RequireFromString("100")))
}

func TestApplyToCart(t *testing.T) {
	db := openTestDB(t)

	product := models.Product{Name: "Widget", Price: decimal.RequireFromString("60"), Stock: 10}
	require.NoError(t, db.Create(&product).Error)

	coupon := seedCoupon(t, db, models.Coupon{
		Code:           "SAVE10",
		DiscountType:   models.DiscountPercentage,
		DiscountAmount: decimal.RequireFromString("10"),
		MinPurchase:    decimal.RequireFromString("100"),
	})

	// Empty cart cannot take a coupon.
	_, err := ApplyToCart(db, "user-1", "SAVE10", time.Now())
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = cartControllers.AddItem(db, "user-1", product.ID, 1)
	require.NoError(t, err)

	// Subtotal 60 is below the 100 minimum.
	_, err = ApplyToCart(db, "user-1", "SAVE10", time.Now())
	require.ErrorIs(t, err, ErrBelowMinimumPurchase)

	_, err = cartControllers.AddItem(db, "user-1", product.ID, 1)
	require.NoError(t, err)

	cart, err := ApplyToCart(db, "user-1", "save10", time.Now())
	require.NoError(t, err)
	require.NotNil(t, cart.CouponID)
	require.Equal(t, coupon.ID, *cart.CouponID)
	require.NotNil(t, cart.Coupon)
}
