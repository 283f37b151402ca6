package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bloomloft/garland/internal/order/domain"
	"github.com/bloomloft/garland/pkg/db"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, gdb *gorm.DB, order *domain.Order) (bool, error) {
	err := gdb.WithContext(ctx).Create(order).Error
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) FindByID(ctx context.Context, gdb *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var item domain.Order
	err := gdb.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindByOrderNumber(ctx context.Context, gdb *gorm.DB, orderNumber string) (*domain.Order, error) {
	var item domain.Order
	err := gdb.WithContext(ctx).Where("order_number = ?", orderNumber).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindByGatewayTransactionID(ctx context.Context, gdb *gorm.DB, gatewayTransactionID string) (*domain.Order, error) {
	var item domain.Order
	err := gdb.WithContext(ctx).
		Where("gateway_transaction_id = ?", gatewayTransactionID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, gdb *gorm.DB, filter domain.ListOrderFilter) ([]domain.Order, int64, error) {
	query := gdb.WithContext(ctx).Model(&domain.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Order
	err := query.
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) UpdateStatus(ctx context.Context, gdb *gorm.DB, id snowflake.ID, status domain.OrderStatus, updatedAt time.Time) error {
	return gdb.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": updatedAt,
		}).Error
}

func (r *repo) UpdatePaymentStatus(ctx context.Context, gdb *gorm.DB, id snowflake.ID, status domain.PaymentStatus, updatedAt time.Time) error {
	return gdb.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_status": status,
			"updated_at":     updatedAt,
		}).Error
}
