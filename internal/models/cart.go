package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is owned by exactly one of SessionCartID or UserID. A merge moves a
// session cart to its user and clears SessionCartID.
type Cart struct {
	ID            string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SessionCartID *string    `json:"sessionCartId,omitempty" gorm:"uniqueIndex;type:varchar(64)"`
	UserID        *string    `json:"userId,omitempty" gorm:"uniqueIndex;type:varchar(36)"`
	Items         []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// CartItem is a line in a cart. Price is the product price when the line was added.
type CartItem struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	CartID    string          `json:"-" gorm:"index;type:varchar(36);not null"`
	ProductID string          `json:"productId" gorm:"type:varchar(36);not null"`
	Name      string          `json:"name" gorm:"type:varchar(255)"`
	Slug      string          `json:"slug" gorm:"type:varchar(255)"`
	Quantity  int             `json:"qty" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time       `json:"-"`
}

// OwnedBySession reports whether the cart still belongs to an anonymous session.
func (c *Cart) OwnedBySession() bool {
	return c.SessionCartID != nil && c.UserID == nil
}

// Prices returns the derived prices of the cart contents.
func (c *Cart) Prices() Prices {
	lines := make([]Line, len(c.Items))
	for i, item := range c.Items {
		lines[i] = Line{Price: item.Price, Quantity: item.Quantity}
	}
	return CalcPrices(lines)
}

// CartOwner identifies whose cart an operation targets. A non-empty UserID
// takes precedence over SessionCartID.
type CartOwner struct {
	SessionCartID string
	UserID        string
}

// IsZero reports whether the owner identifies nobody.
func (o CartOwner) IsZero() bool {
	return o.SessionCartID == "" && o.UserID == ""
}
