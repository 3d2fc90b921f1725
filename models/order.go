package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentMethod is the canonical payment-method enum. The old data model mixed
// "cod" and "pay_on_delivery"; "pay_on_delivery" is the single accepted value
// going forward.
type PaymentMethod string

const (
	PaymentMethodCard          PaymentMethod = "card"
	PaymentMethodPayOnDelivery PaymentMethod = "pay_on_delivery"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCard || m == PaymentMethodPayOnDelivery
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// OrderStatus is the fulfillment lifecycle, distinct from payment status.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further fulfillment transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo enforces pending → processing → shipped → delivered, with
// cancelled reachable from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing
	case OrderStatusProcessing:
		return next == OrderStatusShipped
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	}
	return false
}

// ShippingSnapshot is the contact/address block copied into the order at
// creation time. Later profile edits never touch it.
type ShippingSnapshot struct {
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
	Email     string `json:"email" bson:"email"`
	Address   string `json:"address" bson:"address"`
	City      string `json:"city" bson:"city"`
	State     string `json:"state" bson:"state"`
	ZipCode   string `json:"zip_code" bson:"zip_code"`
}

// Order is the order header. Line items and the total are immutable once the
// order exists; only PaymentStatus and Status may change afterwards.
type Order struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"user_id" bson:"user_id"`
	TotalAmount   Money              `json:"total_amount" bson:"total_amount"`
	PaymentMethod PaymentMethod      `json:"payment_method" bson:"payment_method"`
	PaymentStatus PaymentStatus      `json:"payment_status" bson:"payment_status"`
	Status        OrderStatus        `json:"status" bson:"status"`
	Shipping      ShippingSnapshot   `json:"shipping" bson:"shipping"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// Payment is kept 1:1 with its order for now; a separate record leaves room
// for multiple payment attempts later.
type Payment struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	OrderID       primitive.ObjectID `json:"order_id" bson:"order_id"`
	Amount        Money              `json:"amount" bson:"amount"`
	Method        PaymentMethod      `json:"payment_method" bson:"payment_method"`
	Status        PaymentStatus      `json:"status" bson:"status"`
	TransactionID string             `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// OrderLine snapshots the unit price at order time. Created once, never
// mutated; the referenced product may be deleted later without invalidating it.
type OrderLine struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	OrderID   primitive.ObjectID `json:"order_id" bson:"order_id"`
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Price     Money              `json:"price" bson:"price"`
}
