package storage

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloomloft/garland/internal/ratelimit"
)

// BatchRunner is the fallback when only the pooled, statement-level
// credential is configured. It pins a single connection for the duration
// of the mutator so the writes are issued back-to-back on one session,
// but it does not open a transaction and offers no read isolation.
//
// When a Redis locker is configured the key is locked for the duration of
// the batch. The lock is best effort: failure to acquire it is logged and
// the batch proceeds, because the unique index on the gateway transaction
// id remains the authoritative duplicate guard.
type BatchRunner struct {
	db     *gorm.DB
	locker *ratelimit.Locker
	log    *zap.Logger
}

func NewBatchRunner(db *gorm.DB, locker *ratelimit.Locker, log *zap.Logger) *BatchRunner {
	return &BatchRunner{
		db:     db,
		locker: locker,
		log:    log.Named("storage.batch"),
	}
}

func (r *BatchRunner) RunAtomic(ctx context.Context, key string, fn func(tx *gorm.DB) error) error {
	if r.locker != nil {
		lockKey := "promotion:lock:" + key
		token, ok, err := r.locker.TryLock(ctx, lockKey, ratelimit.DefaultLockTTL)
		if err != nil || !ok {
			r.log.Warn("promotion lock unavailable, proceeding unlocked",
				zap.String("key", key),
				zap.Bool("held_elsewhere", err == nil && !ok),
				zap.Error(err),
			)
		} else {
			defer func() {
				if rerr := r.locker.Release(context.WithoutCancel(ctx), lockKey, token); rerr != nil {
					r.log.Warn("promotion lock release failed",
						zap.String("key", key),
						zap.Error(rerr),
					)
				}
			}()
		}
	}

	return r.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		return fn(conn)
	})
}

func (r *BatchRunner) Transactional() bool { return false }
