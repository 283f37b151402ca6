package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	ChannelCustomerEmail = "customer_email"
	ChannelStaffEmail    = "staff_email"
	ChannelChat          = "chat"
)

const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Record is the append-only audit row for one delivery attempt. Rows are
// best effort: a failed insert is logged and dropped, never propagated.
type Record struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	OrderID       snowflake.ID `json:"order_id" gorm:"index;not null"`
	Channel       string       `json:"channel" gorm:"type:text;not null"`
	Recipient     string       `json:"recipient" gorm:"type:text"`
	Outcome       string       `json:"outcome" gorm:"type:text;not null"`
	Error         string       `json:"error,omitempty" gorm:"type:text"`
	PayloadDigest string       `json:"payload_digest" gorm:"type:text"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null"`
}

func (Record) TableName() string { return "notification_records" }
