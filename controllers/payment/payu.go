package paymentControllers

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/cart"
	orderControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/order"
	"github.com/nikhildhimann/zenmarket-ecommerce/models"
)

// ProductInfo is the fixed description PayU displays; it is part of both
// hashes, so outbound and verification must agree on it.
const ProductInfo = "E-commerce Purchase"

// PaymentRequest is the form-post payload the client forwards to PayU.
type PaymentRequest struct {
	Key         string `json:"key"`
	TxnID       string `json:"txnid"`
	Amount      string `json:"amount"`
	ProductInfo string `json:"productinfo"`
	FirstName   string `json:"firstname"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	SuccessURL  string `json:"surl"`
	FailureURL  string `json:"furl"`
	Hash        string `json:"hash"`
}

type payuConfig struct {
	key        string
	salt       string
	successURL string
	failureURL string
}

// getPayuConfig reads gateway credentials from the environment.
func getPayuConfig() (payuConfig, error) {
	cfg := payuConfig{
		key:        os.Getenv("PAYU_MERCHANT_KEY"),
		salt:       os.Getenv("PAYU_MERCHANT_SALT"),
		successURL: os.Getenv("PAYU_SUCCESS_URL"),
		failureURL: os.Getenv("PAYU_FAILURE_URL"),
	}
	if cfg.key == "" || cfg.salt == "" || cfg.successURL == "" || cfg.failureURL == "" {
		return payuConfig{}, fmt.Errorf("payu configuration missing")
	}
	return cfg, nil
}

func sha512Hex(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}

// RequestHash signs the outbound payment request:
// sha512(key|txnid|amount|productinfo|firstname|email|<10 empty fields>|salt).
func RequestHash(key, salt, txnid, amount, productinfo, firstname, email string) string {
	fields := []string{
		key, txnid, amount, productinfo, firstname, email,
		"", "", "", "", "", "", "", "", "", "",
	}
	return sha512Hex(strings.Join(fields, "|") + "|" + salt)
}

// ResponseHash is the hash PayU sends with a callback: the request field
// list reversed, salt first and status spliced in.
func ResponseHash(key, salt, status, email, firstname, productinfo, amount, txnid string) string {
	fields := []string{
		salt, status,
		"", "", "", "", "", "", "", "", "", "",
		email, firstname, productinfo, amount, txnid, key,
	}
	return sha512Hex(strings.Join(fields, "|"))
}

// BuildPaymentRequest assembles the signed redirect payload for an order.
// The amount is fixed to two decimals here, at the gateway boundary.
func BuildPaymentRequest(order models.Order, user models.User) (PaymentRequest, error) {
	cfg, err := getPayuConfig()
	if err != nil {
		return PaymentRequest{}, err
	}

	amount := order.TotalPrice.StringFixed(2)
	txnid := order.PaymentInfo.ID

	return PaymentRequest{
		Key:         cfg.key,
		TxnID:       txnid,
		Amount:      amount,
		ProductInfo: ProductInfo,
		FirstName:   user.Name,
		Email:       user.Email,
		Phone:       user.Phone,
		SuccessURL:  cfg.successURL,
		FailureURL:  cfg.failureURL,
		Hash:        RequestHash(cfg.key, cfg.salt, txnid, amount, ProductInfo, user.Name, user.Email),
	}, nil
}

// -------- Handlers --------

type ProcessPaymentInput struct {
	ShippingAddressID uint `json:"shipping_address_id" binding:"required"`
}

// POST /payment/payu/process
//
// Creates the Pending Payment order and returns the signed gateway
// payload. Any failure here blocks the redirect with a clear reason; the
// cart stays as it was.
func ProcessPaymentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var input ProcessPaymentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Shipping address is required"})
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		order, err := orderControllers.InitiateCheckout(db, userID, input.ShippingAddressID)
		if err != nil {
			switch {
			case errors.Is(err, orderControllers.ErrEmptyCart):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
			case errors.Is(err, orderControllers.ErrAddressNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.Is(err, cartControllers.ErrProductNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "A product in your cart no longer exists"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initiate checkout"})
			}
			return
		}

		paymentData, err := BuildPaymentRequest(order, user)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"payment_data": paymentData,
			"order":        order,
		})
	}
}

// POST /payment/payu/success
//
// Gateway callbacks are retried at least once on failure, so this handler
// acknowledges everything it can: an unknown transaction reference is
// logged and answered 200 to stop the retry storm, duplicates settle
// silently inside HandlePaymentCallback.
func PayuSuccessHandler(db *gorm.DB, hub *orderControllers.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		txnid := c.PostForm("txnid")
		status := c.PostForm("status")
		if txnid == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing txnid"})
			return
		}

		if err := orderControllers.HandlePaymentCallback(db, hub, txnid, status); err != nil {
			if errors.Is(err, orderControllers.ErrOrderNotFound) {
				log.Printf("payu callback for unknown txnid %q", txnid)
				c.JSON(http.StatusOK, gin.H{"message": "No matching order"})
				return
			}
			log.Printf("payu success callback failed for txnid %q: %v", txnid, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process payment callback"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment processed"})
	}
}

// POST /payment/payu/failure
func PayuFailureHandler(db *gorm.DB, hub *orderControllers.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		txnid := c.PostForm("txnid")
		status := c.PostForm("status")
		if txnid == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing txnid"})
			return
		}
		if status == "" || status == orderControllers.GatewayStatusSuccess {
			status = "failure"
		}

		if err := orderControllers.HandlePaymentCallback(db, hub, txnid, status); err != nil {
			if errors.Is(err, orderControllers.ErrOrderNotFound) {
				log.Printf("payu callback for unknown txnid %q", txnid)
				c.JSON(http.StatusOK, gin.H{"message": "No matching order"})
				return
			}
			log.Printf("payu failure callback failed for txnid %q: %v", txnid, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process payment callback"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment failure recorded"})
	}
}
