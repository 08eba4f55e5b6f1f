package middleware

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	paymentControllers "github.com/nikhildhimann/zenmarket-ecommerce/controllers/payment"
)

// PayuCallbackAuth verifies the response hash on inbound PayU callbacks
// before any order state is touched. Without this check anyone who knows
// a transaction id could forge a success callback and drain stock. Skipped
// in sandbox/dev mode, where the gateway simulator does not sign.
func PayuCallbackAuth() gin.HandlerFunc {
	merchantKey := os.Getenv("PAYU_MERCHANT_KEY")
	salt := os.Getenv("PAYU_MERCHANT_SALT")
	if merchantKey == "" || salt == "" {
		panic("PAYU_MERCHANT_KEY / PAYU_MERCHANT_SALT are not set")
	}

	mode := strings.ToLower(os.Getenv("PAYU_MODE"))

	return func(c *gin.Context) {
		if mode == "sandbox" || mode == "dev" {
			log.Println("Sandbox/dev mode: skipping PayU callback hash verification")
			c.Next()
			return
		}

		if err := c.Request.ParseForm(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse form for hash verification"})
			c.Abort()
			return
		}

		provided := c.PostForm("hash")
		if provided == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "missing callback hash"})
			c.Abort()
			return
		}

		calculated := paymentControllers.ResponseHash(
			merchantKey,
			salt,
			c.PostForm("status"),
			c.PostForm("email"),
			c.PostForm("firstname"),
			c.PostForm("productinfo"),
			c.PostForm("amount"),
			c.PostForm("txnid"),
		)

		if !strings.EqualFold(calculated, provided) {
			log.Printf("payu callback hash mismatch for txnid %q", c.PostForm("txnid"))
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid callback hash"})
			c.Abort()
			return
		}

		c.Next()
	}
}
