package services

import (
	"log"
	"time"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// Order lifecycle event types.
const (
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrderDelivered = "order.delivered"
)

// OrderEvent is the payload published for every order transition.
type OrderEvent struct {
	Type          string               `json:"type"`
	OrderID       string               `json:"orderId"`
	UserID        string               `json:"userId"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	TotalPrice    decimal.Decimal      `json:"totalPrice"`
	At            time.Time            `json:"at"`
}

// EventPublisher delivers order events to interested consumers.
type EventPublisher interface {
	PublishOrderEvent(eventType string, payload interface{}) error
}

// publishOrderEvent never fails the caller: the transition is already committed.
func publishOrderEvent(p EventPublisher, eventType string, order *models.Order, at time.Time) {
	if p == nil {
		return
	}
	ev := OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		UserID:        order.UserID,
		PaymentMethod: order.PaymentMethod,
		TotalPrice:    order.TotalPrice,
		At:            at,
	}
	if err := p.PublishOrderEvent(eventType, ev); err != nil {
		log.Printf("Warning: failed to publish %s for order %s: %v", eventType, order.ID, err)
	}
}
