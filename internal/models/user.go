package models

import "time"

// Role is the authorization role carried by a user and by their session token.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// DefaultUserName is stored when a user signs up without a name.
const DefaultUserName = "NO_NAME"

// ShippingAddress is collected during checkout and copied onto every order.
type ShippingAddress struct {
	FullName      string `json:"fullName" validate:"required,min=3,max=100"`
	StreetAddress string `json:"streetAddress" validate:"required,min=3,max=200"`
	City          string `json:"city" validate:"required,min=2,max=100"`
	PostalCode    string `json:"postalCode" validate:"required,min=3,max=20"`
	Country       string `json:"country" validate:"required,min=2,max=100"`
}

// User represents a customer or administrator of the store.
type User struct {
	ID            string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string           `json:"name" gorm:"type:varchar(100);not null"`
	Email         string           `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password      string           `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	Role          Role             `json:"role" gorm:"type:varchar(16);not null;default:user"`
	Address       *ShippingAddress `json:"address,omitempty" gorm:"serializer:json;type:text"`
	PaymentMethod PaymentMethod    `json:"paymentMethod,omitempty" gorm:"type:varchar(32)"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
