package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how an order is paid.
type PaymentMethod string

const (
	PaymentMethodWallet     PaymentMethod = "WalletProvider"
	PaymentMethodCard       PaymentMethod = "CardProcessor"
	PaymentMethodOnDelivery PaymentMethod = "PayOnDelivery"
)

// Valid reports whether m is one of the supported payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodWallet, PaymentMethodCard, PaymentMethodOnDelivery:
		return true
	}
	return false
}

// OrderState is the lifecycle state derived from the paid/delivered flags.
type OrderState string

const (
	OrderStateCreated   OrderState = "created"
	OrderStatePaid      OrderState = "paid"
	OrderStateDelivered OrderState = "delivered"
)

// PaymentResult is the opaque receipt stored when an order is paid.
type PaymentResult struct {
	Provider     string `json:"provider"`
	ID           string `json:"id"`
	Status       string `json:"status"`
	EmailAddress string `json:"email_address,omitempty"`
	PricePaid    string `json:"pricePaid"`
}

// OrderItem is an immutable copy of a cart line taken at checkout.
type OrderItem struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	OrderID   string          `json:"-" gorm:"index;type:varchar(36);not null"`
	ProductID string          `json:"productId" gorm:"type:varchar(36);not null"`
	Name      string          `json:"name" gorm:"type:varchar(255)"`
	Slug      string          `json:"slug" gorm:"type:varchar(255)"`
	Quantity  int             `json:"qty" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
}

// Order is created from a cart snapshot. Its prices and items never change
// after creation; only the paid and delivered fields move, and only forward.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"userId" gorm:"index;type:varchar(36);not null"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"serializer:json;type:text"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(32);not null"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty" gorm:"serializer:json;type:text"`
	ItemsPrice      decimal.Decimal `json:"itemsPrice" gorm:"type:numeric(12,2);not null"`
	ShippingPrice   decimal.Decimal `json:"shippingPrice" gorm:"type:numeric(12,2);not null"`
	TaxPrice        decimal.Decimal `json:"taxPrice" gorm:"type:numeric(12,2);not null"`
	TotalPrice      decimal.Decimal `json:"totalPrice" gorm:"type:numeric(12,2);not null"`
	IsPaid          bool            `json:"isPaid" gorm:"not null;default:false"`
	PaidAt          *time.Time      `json:"paidAt"`
	IsDelivered     bool            `json:"isDelivered" gorm:"not null;default:false"`
	DeliveredAt     *time.Time      `json:"deliveredAt"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// State derives the lifecycle state of the order.
func (o *Order) State() OrderState {
	switch {
	case o.IsDelivered:
		return OrderStateDelivered
	case o.IsPaid:
		return OrderStatePaid
	default:
		return OrderStateCreated
	}
}
