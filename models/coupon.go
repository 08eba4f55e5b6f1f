package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage" // amount is a percent of the subtotal
	DiscountFixed      DiscountType = "fixed"      // amount is currency, capped at the subtotal
)

type Coupon struct {
	ID             uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Code           string          `gorm:"uniqueIndex;not null" json:"code"` // stored uppercase
	DiscountType   DiscountType    `gorm:"type:VARCHAR(20);not null" json:"discount_type"`
	DiscountAmount decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"discount_amount"`
	ExpiryDate     time.Time       `gorm:"not null" json:"expiry_date"`
	MinPurchase    decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"min_purchase"`
	UsageLimit     int             `gorm:"default:0" json:"usage_limit"` // 0 = unlimited
	TimesUsed      int             `gorm:"default:0" json:"times_used"`
	CreatedAt      time.Time       `json:"created_at"`
}
