package storage

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloomloft/garland/internal/config"
	"github.com/bloomloft/garland/internal/ratelimit"
)

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	Locker *ratelimit.Locker `optional:"true"`
}

// Provide selects the atomic runner from the configured store credential.
// A privileged service credential unlocks real transactions; the pooled
// credential cannot hold a transaction open across statements, so it gets
// the pinned-connection batch runner instead.
func Provide(p Params) AtomicRunner {
	if p.Config.HasServiceCredential() {
		p.Log.Info("storage: using transactional runner")
		return NewTxRunner(p.DB, p.Log)
	}
	p.Log.Warn("storage: no service credential, falling back to batch runner")
	return NewBatchRunner(p.DB, p.Locker, p.Log)
}

var Module = fx.Module("storage",
	fx.Provide(Provide),
)
