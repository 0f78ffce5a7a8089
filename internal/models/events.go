package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderPlaced      = "ORDER_PLACED"
	EventTypeOrderCancelled   = "ORDER_CANCELLED"
	EventTypeOrderUpdated     = "ORDER_UPDATED"
	EventTypeOrderDeleted     = "ORDER_DELETED"
	EventTypeProductApproved  = "PRODUCT_APPROVED"
	EventTypeProductRejected  = "PRODUCT_REJECTED"
	EventTypeProductSubmitted = "PRODUCT_SUBMITTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderEvent is published whenever a non-cart order changes
type OrderEvent struct {
	BaseEvent
	OrderID int64           `json:"order_id"`
	UserID  int64           `json:"user_id"`
	Status  string          `json:"status"`
	Total   decimal.Decimal `json:"total"`
	Reason  string          `json:"reason,omitempty"`
}

// ProductEvent is published on approval workflow transitions
type ProductEvent struct {
	BaseEvent
	ProductID  int64  `json:"product_id"`
	SupplierID *int64 `json:"supplier_id,omitempty"`
	Status     string `json:"status"`
	ActorID    int64  `json:"actor_id"`
}
