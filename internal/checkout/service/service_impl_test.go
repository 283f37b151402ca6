package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloomloft/garland/internal/checkout/domain"
	"github.com/bloomloft/garland/internal/checkout/repository"
	"github.com/bloomloft/garland/internal/clock"
	"github.com/bloomloft/garland/internal/config"
)

func setupCheckoutService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	require.NoError(t, db.AutoMigrate(&domain.DraftSession{}))

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)),
		Cfg:   config.Config{OrderNumberPrefix: "CD"},
		Repo:  repository.Provide(),
	})
}

func validRequest() domain.CreateDraftRequest {
	return domain.CreateDraftRequest{
		Items: []domain.CartItem{
			{ProductID: "wreath-olive", Name: "Olive Wreath", UnitPrice: 45000, Quantity: 1},
		},
		Party: domain.Party{
			Sender:    domain.Contact{Name: "Ayşe Yılmaz", Email: "ayse@example.com"},
			Recipient: domain.Contact{Name: "Mehmet Kaya"},
			Delivery:  domain.Delivery{Address: "Çiçek Sk. 5", City: "İstanbul"},
		},
		Amounts: domain.Amounts{Subtotal: 45000, Total: 45000, Currency: "try"},
	}
}

func TestCreateDraftAssignsMerchantOrderID(t *testing.T) {
	svc := setupCheckoutService(t)

	draft, err := svc.CreateDraft(context.Background(), validRequest())
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(draft.MerchantOrderID, "CD250101-"), draft.MerchantOrderID)
	require.Len(t, draft.MerchantOrderID, len("CD250101-AB12"))
	require.Equal(t, "TRY", draft.Currency)
	require.EqualValues(t, 45000, draft.TotalAmount)
}

func TestCreateDraftKeepsCallerID(t *testing.T) {
	svc := setupCheckoutService(t)

	req := validRequest()
	req.MerchantOrderID = "CD250101-AB12"

	draft, err := svc.CreateDraft(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "CD250101-AB12", draft.MerchantOrderID)

	fetched, err := svc.GetDraft(context.Background(), "CD250101-AB12")
	require.NoError(t, err)
	require.EqualValues(t, 45000, fetched.TotalAmount)
}

func TestCreateDraftRejectsDuplicateID(t *testing.T) {
	svc := setupCheckoutService(t)

	req := validRequest()
	req.MerchantOrderID = "CD250101-AB12"

	_, err := svc.CreateDraft(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.CreateDraft(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrDraftExists)
}

func TestCreateDraftValidation(t *testing.T) {
	svc := setupCheckoutService(t)
	ctx := context.Background()

	req := validRequest()
	req.Items = nil
	_, err := svc.CreateDraft(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidItems)

	req = validRequest()
	req.Items[0].Quantity = 0
	_, err = svc.CreateDraft(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidItems)

	req = validRequest()
	req.Party.Recipient.Name = ""
	_, err = svc.CreateDraft(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidParty)

	req = validRequest()
	req.Party.Delivery.Address = ""
	_, err = svc.CreateDraft(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidParty)

	req = validRequest()
	req.Amounts.Total = 0
	_, err = svc.CreateDraft(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidAmounts)
}

func TestGetDraftNotFound(t *testing.T) {
	svc := setupCheckoutService(t)

	_, err := svc.GetDraft(context.Background(), "CD250101-ZZ99")
	require.ErrorIs(t, err, domain.ErrDraftNotFound)
}
