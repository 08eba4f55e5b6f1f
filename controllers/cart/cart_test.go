package cartControllers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

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
		&models.User{},
		&models.Address{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestGetOrCreateCartIsLazy(t *testing.T) {
	db := openTestDB(t)

	cart, err := GetOrCreateCart(db, "user-1")
	require.NoError(t, err)
	require.NotZero(t, cart.CartID)
	require.Empty(t, cart.Items)

	again, err := GetOrCreateCart(db, "user-1")
	require.NoError(t, err)
	require.Equal(t, cart.CartID, again.CartID)
}

func TestAddItemSumsQuantities(t *testing.T) {
	db := openTestDB(t)
	product := seedProduct(t, db, "Widget", "19.99", 10)

	_, err := AddItem(db, "user-1", product.ID, 2)
	require.NoError(t, err)

	cart, err := AddItem(db, "user-1", product.ID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	require.Equal(t, product.ID, cart.Items[0].ProductID)
	require.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItemUnknownProduct(t *testing.T) {
	db := openTestDB(t)

	_, err := AddItem(db, "user-1", 999, 1)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddItemRejectsZeroQuantity(t *testing.T) {
	db := openTestDB(t)
	product := seedProduct(t, db, "Widget", "5.00", 10)

	_, err := AddItem(db, "user-1", product.ID, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSetItemQuantity(t *testing.T) {
	db := openTestDB(t)
	product := seedProduct(t, db, "Widget", "5.00", 10)

	cart, err := AddItem(db, "user-1", product.ID, 2)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	require.NoError(t, SetItemQuantity(db, "user-1", itemID, 7))

	cart, err = GetOrCreateCart(db, "user-1")
	require.NoError(t, err)
	require.Equal(t, 7, cart.Items[0].Quantity)

	require.ErrorIs(t, SetItemQuantity(db, "user-1", itemID, 0), ErrInvalidQuantity)
	require.ErrorIs(t, SetItemQuantity(db, "user-1", 999, 3), ErrCartItemNotFound)
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	product := seedProduct(t, db, "Widget", "5.00", 10)

	cart, err := AddItem(db, "user-1", product.ID, 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	require.NoError(t, RemoveItem(db, "user-1", itemID))
	// Second removal of the same item is a silent no-op.
	require.NoError(t, RemoveItem(db, "user-1", itemID))

	cart, err = GetOrCreateCart(db, "user-1")
	require.NoError(t, err)
	require.Empty(t, cart.Items)
}

func TestCartLinesFailsOnDanglingProduct(t *testing.T) {
	db := openTestDB(t)
	product := seedProduct(t, db, "Widget", "5.00", 10)

	cart, err := AddItem(db, "user-1", product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, db.Unscoped().Delete(&models.Product{}, product.ID).Error)

	_, _, err = CartLines(db, cart.Items)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestClearCartTxDetachesCoupon(t *testing.T) {
	db := openTestDB(t)
	product := seedProduct(t, db, "Widget", "5.00", 10)

	coupon := models.Coupon{
		Code:           "SAVE10",
		DiscountType:   models.DiscountPercentage,
		DiscountAmount: decimal.RequireFromString("10"),
	}
	require.NoError(t, db.Create(&coupon).Error)

	cart, err := AddItem(db, "user-1", product.ID, 1)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Cart{}).Where("cart_id = ?", cart.CartID).
		Update("coupon_id", coupon.ID).Error)

	require.NoError(t, ClearCartTx(db, cart.CartID))

	cart, err = GetOrCreateCart(db, "user-1")
	require.NoError(t, err)
	require.Empty(t, cart.Items)
	require.Nil(t, cart.CouponID)
}
