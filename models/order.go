package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "Pending Payment" // awaiting the gateway callback
	OrderStatusProcessing     OrderStatus = "Processing"      // payment confirmed, stock taken
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusDelivered      OrderStatus = "Delivered" // terminal
	OrderStatusCancelled      OrderStatus = "Cancelled" // terminal
	OrderStatusPaymentFailed  OrderStatus = "Payment Failed"
)

// PaymentInfo.ID is the gateway transaction reference generated at
// checkout. It is the only correlation key between an order and the
// asynchronous callback, hence the unique index.
type PaymentInfo struct {
	ID     string `gorm:"uniqueIndex" json:"id"`
	Status string `json:"status"`
}

type Order struct {
	ID                uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            string          `gorm:"not null;index" json:"user_id"`
	ShippingAddressID uint            `gorm:"not null" json:"shipping_address_id"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice        decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total_price"`
	CouponCode        string          `json:"coupon_code,omitempty"`
	PaymentInfo       PaymentInfo     `gorm:"embedded;embeddedPrefix:payment_" json:"payment_info"`
	Status            OrderStatus     `gorm:"type:VARCHAR(20);default:'Pending Payment'" json:"status"`
	DeliveredAt       *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// OrderItem is an owned copy taken from the catalog at checkout time, so
// later product edits never alter historical orders.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	OrderID   uint            `gorm:"index" json:"-"`
	ProductID uint            `gorm:"not null" json:"product_id"`
	Name      string          `gorm:"not null" json:"name"`
	ImageURL  string          `json:"image"`
	Price     decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}
