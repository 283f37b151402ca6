package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CartItem is one line of the cart snapshot, priced in minor units at the
// moment checkout started.
type CartItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Party carries the sender, recipient and delivery details needed to
// render notifications and ship the order. The shop sends flowers, so the
// buyer and the receiving party are usually different people.
type Party struct {
	Sender    Contact  `json:"sender"`
	Recipient Contact  `json:"recipient"`
	Delivery  Delivery `json:"delivery"`
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Delivery struct {
	Address  string `json:"address"`
	City     string `json:"city"`
	District string `json:"district,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeSlot string `json:"time_slot,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Amounts is the computed total snapshot. It is written once at checkout
// start and never recomputed from the gateway callback.
type Amounts struct {
	Subtotal int64  `json:"subtotal"`
	Shipping int64  `json:"shipping"`
	Tax      int64  `json:"tax"`
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

// DraftSession is a pending checkout. It is created before the customer is
// redirected to the payment gateway, read and deleted exactly once by the
// promotion flow, and never updated in place.
type DraftSession struct {
	MerchantOrderID string         `json:"merchant_order_id" gorm:"primaryKey"`
	Cart            datatypes.JSON `json:"cart" gorm:"type:jsonb;not null"`
	Party           datatypes.JSON `json:"party" gorm:"type:jsonb;not null"`
	SubtotalAmount  int64          `json:"subtotal_amount"`
	ShippingAmount  int64          `json:"shipping_amount"`
	TaxAmount       int64          `json:"tax_amount"`
	TotalAmount     int64          `json:"total_amount"`
	Currency        string         `json:"currency" gorm:"type:text;not null"`
	CreatedAt       time.Time      `json:"created_at" gorm:"not null"`
}

func (DraftSession) TableName() string { return "draft_sessions" }
