package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog entry a cart line refers to. Only the fields the
// checkout needs are modelled here.
type Product struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null"`
	Slug      string          `json:"slug" gorm:"uniqueIndex;type:varchar(255);not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Stock     int             `json:"stock" gorm:"not null"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
