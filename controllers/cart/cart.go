package cartControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nikhildhimann/zenmarket-ecommerce/models"
	"github.com/nikhildhimann/zenmarket-ecommerce/pricing"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
)

type AddItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateQuantityInput struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetOrCreateCart loads the user's cart with items and coupon, creating an
// empty cart on first access.
func GetOrCreateCart(db *gorm.DB, userID string) (models.Cart, error) {
	var cart models.Cart
	err := db.Preload("Items").Preload("Coupon").Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := db.Create(&cart).Error; err != nil {
			return models.Cart{}, err
		}
		return cart, nil
	}
	return cart, err
}

// CartLines resolves every cart item against the catalog. A dangling
// product reference is an error: callers must never price or snapshot a
// cart that points at a vanished product.
func CartLines(db *gorm.DB, items []models.CartItem) ([]pricing.LineItem, map[uint]models.Product, error) {
	if len(items) == 0 {
		return nil, map[uint]models.Product{}, nil
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	var products []models.Product
	if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]pricing.LineItem, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, nil, ErrProductNotFound
		}
		lines = append(lines, pricing.LineItem{Price: product.Price, Quantity: item.Quantity})
	}
	return lines, byID, nil
}

// AddItem inserts a line or sums quantities when the product is already in
// the cart. The upsert keys on the (cart, product) unique index, so two
// concurrent adds both land instead of one overwriting the other.
func AddItem(db *gorm.DB, userID string, productID uint, quantity int) (models.Cart, error) {
	if quantity < 1 {
		return models.Cart{}, ErrInvalidQuantity
	}

	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Cart{}, ErrProductNotFound
		}
		return models.Cart{}, err
	}

	cart, err := GetOrCreateCart(db, userID)
	if err != nil {
		return models.Cart{}, err
	}

	item := models.CartItem{
		CartID:    cart.CartID,
		ProductID: product.ID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
			"added_at": item.AddedAt,
		}),
	}).Create(&item).Error
	if err != nil {
		return models.Cart{}, err
	}

	return GetOrCreateCart(db, userID)
}

// SetItemQuantity overwrites a line's quantity.
func SetItemQuantity(db *gorm.DB, userID string, itemID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	cart, err := GetOrCreateCart(db, userID)
	if err != nil {
		return err
	}

	res := db.Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cart.CartID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// RemoveItem deletes a line. Removing an item that is already gone is not
// an error worth surfacing.
func RemoveItem(db *gorm.DB, userID string, itemID uint) error {
	cart, err := GetOrCreateCart(db, userID)
	if err != nil {
		return err
	}
	return db.Where("id = ? AND cart_id = ?", itemID, cart.CartID).
		Delete(&models.CartItem{}).Error
}

// ClearCartTx empties the cart's items and detaches its coupon. Runs under
// the caller's transaction so order creation and cart clearing commit
// together.
func ClearCartTx(tx *gorm.DB, cartID uint) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return tx.Model(&models.Cart{}).Where("cart_id = ?", cartID).
		Update("coupon_id", nil).Error
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be numeric"})
		return 0, false
	}
	return uint(v), true
}

// -------- Handlers --------

// GET /cart
func GetUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		cart, err := GetOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /cart/items
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cart, err := AddItem(db, userID, input.ProductID, input.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, ErrProductNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Product does not exist"})
			case errors.Is(err, ErrInvalidQuantity):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			}
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// PUT /cart/items/:itemID
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		itemID, ok := parseUintParam(c, "itemID")
		if !ok {
			return
		}

		var input UpdateQuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if err := SetItemQuantity(db, userID, itemID, input.Quantity); err != nil {
			switch {
			case errors.Is(err, ErrInvalidQuantity):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, ErrCartItemNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
	}
}

// DELETE /cart/items/:itemID
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		itemID, ok := parseUintParam(c, "itemID")
		if !ok {
			return
		}

		if err := RemoveItem(db, userID, itemID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// DELETE /cart
func ClearUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		cart, err := GetOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		if err := ClearCartTx(db, cart.CartID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
