package authorization

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	_ "embed"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloomloft/garland/internal/config"
)

//go:embed model.conf
var modelText string

const ObjectOrder = "order"

const (
	ActionOrderView         = "order.view"
	ActionOrderUpdateStatus = "order.update_status"
	ActionOrderRefund       = "order.refund"
)

var (
	ErrInvalidActor = errors.New("authorization: unknown api key")
	ErrForbidden    = errors.New("authorization: forbidden")
)

type Service interface {
	// ResolveRole maps a raw API key to its configured role. Comparison
	// is constant time over sha256 digests.
	ResolveRole(apiKey string) (string, error)
	Authorize(ctx context.Context, role string, object string, action string) error
}

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	keys     []hashedKey
}

type hashedKey struct {
	role   string
	digest string
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	keys := make([]hashedKey, 0, len(p.Config.AdminAPIKeys))
	for _, k := range p.Config.AdminAPIKeys {
		keys = append(keys, hashedKey{
			role:   k.Role,
			digest: HashAPIKey(k.Key),
		})
	}
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		keys:     keys,
	}
}

// HashAPIKey returns the hex sha256 digest of a raw key. Configured keys
// and presented keys are compared in digest form only.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(key)))
	return hex.EncodeToString(sum[:])
}

func (s *ServiceImpl) ResolveRole(apiKey string) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", ErrInvalidActor
	}
	presented := HashAPIKey(apiKey)
	for _, k := range s.keys {
		if subtle.ConstantTimeCompare([]byte(presented), []byte(k.digest)) == 1 {
			return k.role, nil
		}
	}
	return "", ErrInvalidActor
}

func (s *ServiceImpl) Authorize(ctx context.Context, role string, object string, action string) error {
	role = strings.TrimSpace(role)
	if role == "" {
		return ErrInvalidActor
	}

	allowed, err := s.enforcer.Enforce("role:"+role, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Warn("authorization denied",
			zap.String("role", role),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:admin", ObjectOrder, ActionOrderView},
		{"role:admin", ObjectOrder, ActionOrderUpdateStatus},
		{"role:admin", ObjectOrder, ActionOrderRefund},

		// Support staff can look orders up but never move money or state.
		{"role:support", ObjectOrder, ActionOrderView},
	}
	for _, policy := range policies {
		// AddPolicy reports false for an existing rule, which is fine.
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
