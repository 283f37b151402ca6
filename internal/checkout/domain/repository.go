package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// Insert persists a new draft. It reports false, without error, when a
	// draft with the same merchant order id already exists.
	Insert(ctx context.Context, db *gorm.DB, draft *DraftSession) (bool, error)
	// Find returns nil when no draft exists. With lock set, and a dialect
	// that supports it, the row is locked for the enclosing transaction.
	Find(ctx context.Context, db *gorm.DB, merchantOrderID string, lock bool) (*DraftSession, error)
	Delete(ctx context.Context, db *gorm.DB, merchantOrderID string) error
}
