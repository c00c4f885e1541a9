package domain

import "time"

// PaymentStatus is the payment state of a booking.
type PaymentStatus string

// Payment status constants.
const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// OrderStatus is the fulfilment state of a booking.
type OrderStatus string

// Order status constants.
const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderInTransit  OrderStatus = "in_transit"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Booking holds the payment-related fields of a delivery booking.
type Booking struct {
	BookingID       string        `json:"booking_id"`
	UserID          string        `json:"user_id"`
	PaymentIntentID *string       `json:"payment_intent_id,omitempty"`
	PaymentMethodID *string       `json:"payment_method_id,omitempty"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	IsPaid          bool          `json:"is_paid"`
	PaidAt          *time.Time    `json:"paid_at,omitempty"`
	OrderStatus     OrderStatus   `json:"order_status"`
	CreatedAt       time.Time     `json:"created_at"`
}

// BookingPayment is the set of fields written when a charge succeeds.
type BookingPayment struct {
	PaymentIntentID string
	PaymentMethodID string
	PaidAt          time.Time
}
