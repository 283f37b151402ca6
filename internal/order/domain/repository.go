package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListOrderFilter struct {
	Status string
	Limit  int
	Offset int
}

type Repository interface {
	// Insert persists a new order. It reports false, without error, when
	// an order with the same gateway transaction id already exists.
	Insert(ctx context.Context, db *gorm.DB, order *Order) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	FindByOrderNumber(ctx context.Context, db *gorm.DB, orderNumber string) (*Order, error)
	FindByGatewayTransactionID(ctx context.Context, db *gorm.DB, gatewayTransactionID string) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListOrderFilter) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status OrderStatus, updatedAt time.Time) error
	UpdatePaymentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status PaymentStatus, updatedAt time.Time) error
}
