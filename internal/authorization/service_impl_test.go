package authorization

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloomloft/garland/internal/config"
)

func setupService(t *testing.T) Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	return NewService(Params{
		Config: config.Config{
			AdminAPIKeys: []config.AdminAPIKey{
				{Role: "admin", Key: "admin-secret"},
				{Role: "support", Key: "support-secret"},
			},
		},
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})
}

func TestResolveRole(t *testing.T) {
	svc := setupService(t)

	role, err := svc.ResolveRole("admin-secret")
	require.NoError(t, err)
	require.Equal(t, "admin", role)

	role, err = svc.ResolveRole("support-secret")
	require.NoError(t, err)
	require.Equal(t, "support", role)

	_, err = svc.ResolveRole("wrong-key")
	require.ErrorIs(t, err, ErrInvalidActor)

	_, err = svc.ResolveRole("")
	require.ErrorIs(t, err, ErrInvalidActor)
}

func TestAdminMayManageOrders(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, "admin", ObjectOrder, ActionOrderView))
	require.NoError(t, svc.Authorize(ctx, "admin", ObjectOrder, ActionOrderUpdateStatus))
	require.NoError(t, svc.Authorize(ctx, "admin", ObjectOrder, ActionOrderRefund))
}

func TestSupportIsReadOnly(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, "support", ObjectOrder, ActionOrderView))
	require.ErrorIs(t, svc.Authorize(ctx, "support", ObjectOrder, ActionOrderUpdateStatus), ErrForbidden)
	require.ErrorIs(t, svc.Authorize(ctx, "support", ObjectOrder, ActionOrderRefund), ErrForbidden)
}

func TestUnknownRoleIsForbidden(t *testing.T) {
	svc := setupService(t)

	require.ErrorIs(t, svc.Authorize(context.Background(), "intern", ObjectOrder, ActionOrderView), ErrForbidden)
}
