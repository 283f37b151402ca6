package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// transitions is the full forward table. Anything absent is rejected;
// delivered and cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether an order may move from one status to
// another. The promotion flow sets the initial confirmed status directly;
// this table governs every admin-triggered move after that.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// PaymentDetails is the gateway outcome recorded at promotion time.
// GatewayTransactionID equals the draft's merchant order id and is the
// idempotency key; a unique index enforces the at-most-once invariant.
type PaymentDetails struct {
	GatewayTransactionID string    `json:"gateway_transaction_id" gorm:"column:gateway_transaction_id;uniqueIndex"`
	PaymentType          string    `json:"payment_type" gorm:"column:payment_type"`
	PaymentAmount        int64     `json:"payment_amount" gorm:"column:payment_amount"`
	Currency             string    `json:"currency" gorm:"column:currency"`
	TestMode             bool      `json:"test_mode" gorm:"column:test_mode"`
	ProcessedAt          time.Time `json:"processed_at" gorm:"column:processed_at"`
	FailureCode          string    `json:"failure_code,omitempty" gorm:"column:failure_code"`
	FailureMessage       string    `json:"failure_message,omitempty" gorm:"column:failure_message"`
}

type Order struct {
	ID            snowflake.ID   `json:"id" gorm:"primaryKey"`
	OrderNumber   string         `json:"order_number" gorm:"uniqueIndex;not null"`
	Status        OrderStatus    `json:"status" gorm:"type:text;not null"`
	PaymentStatus PaymentStatus  `json:"payment_status" gorm:"type:text;not null"`
	Payment       PaymentDetails `json:"payment_details" gorm:"embedded"`

	// Items and Party are copied verbatim from the draft snapshot and
	// never recomputed.
	Items datatypes.JSON `json:"items" gorm:"type:jsonb;not null"`
	Party datatypes.JSON `json:"party" gorm:"type:jsonb;not null"`

	SubtotalAmount int64 `json:"subtotal_amount"`
	ShippingAmount int64 `json:"shipping_amount"`
	TaxAmount      int64 `json:"tax_amount"`
	TotalAmount    int64 `json:"total_amount"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Order) TableName() string { return "orders" }
