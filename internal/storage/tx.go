package storage

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TxRunner runs the mutator inside a database transaction. Requires a
// store credential that is allowed to open interactive transactions.
type TxRunner struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTxRunner(db *gorm.DB, log *zap.Logger) *TxRunner {
	return &TxRunner{
		db:  db,
		log: log.Named("storage.tx"),
	}
}

func (r *TxRunner) RunAtomic(ctx context.Context, key string, fn func(tx *gorm.DB) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
	if err != nil {
		r.log.Debug("transaction rolled back",
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return err
}

func (r *TxRunner) Transactional() bool { return true }
