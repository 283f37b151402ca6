package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bloomloft/garland/internal/notification/domain"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *domain.Record) error
	ListByOrderID(ctx context.Context, db *gorm.DB, orderID int64) ([]domain.Record, error)
}

func Provide() Repository {
	return &repository{}
}

type repository struct{}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repository) ListByOrderID(ctx context.Context, db *gorm.DB, orderID int64) ([]domain.Record, error) {
	var records []domain.Record
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
