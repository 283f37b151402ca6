package repository

import (
	"context"
	"errors"

	"github.com/bloomloft/garland/internal/checkout/domain"
	"github.com/bloomloft/garland/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, gdb *gorm.DB, draft *domain.DraftSession) (bool, error) {
	err := gdb.WithContext(ctx).Create(draft).Error
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) Find(ctx context.Context, gdb *gorm.DB, merchantOrderID string, lock bool) (*domain.DraftSession, error) {
	query := gdb.WithContext(ctx)
	if lock && supportsRowLock(gdb) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var item domain.DraftSession
	err := query.Where("merchant_order_id = ?", merchantOrderID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) Delete(ctx context.Context, gdb *gorm.DB, merchantOrderID string) error {
	return gdb.WithContext(ctx).
		Where("merchant_order_id = ?", merchantOrderID).
		Delete(&domain.DraftSession{}).Error
}

// sqlite has no SELECT ... FOR UPDATE; its writer lock covers the whole file.
func supportsRowLock(gdb *gorm.DB) bool {
	switch gdb.Dialector.Name() {
	case "postgres", "mysql":
		return true
	}
	return false
}
