package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	checkoutdomain "github.com/bloomloft/garland/internal/checkout/domain"
	checkoutrepository "github.com/bloomloft/garland/internal/checkout/repository"
	"github.com/bloomloft/garland/internal/clock"
	"github.com/bloomloft/garland/internal/config"
	"github.com/bloomloft/garland/internal/observability/metrics"
	orderdomain "github.com/bloomloft/garland/internal/order/domain"
	orderrepository "github.com/bloomloft/garland/internal/order/repository"
	"github.com/bloomloft/garland/internal/payment/domain"
	"github.com/bloomloft/garland/internal/payment/verifier"
	"github.com/bloomloft/garland/internal/storage"
)

type dispatcherStub struct {
	mu     sync.Mutex
	orders []*orderdomain.Order
}

func (d *dispatcherStub) Dispatch(ctx context.Context, order *orderdomain.Order) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orders = append(d.orders, order)
}

func (d *dispatcherStub) Dispatched() []*orderdomain.Order {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*orderdomain.Order(nil), d.orders...)
}

func setupPaymentService(t *testing.T) (domain.Service, *verifier.Verifier, *dispatcherStub, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	require.NoError(t, db.AutoMigrate(&checkoutdomain.DraftSession{}, &orderdomain.Order{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	v := verifier.New(config.GatewayConfig{
		MerchantKey:  "test-merchant-key",
		MerchantSalt: "test-merchant-salt",
	})
	dispatcher := &dispatcherStub{}

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		Clock:      clock.NewFakeClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)),
		GenID:      node,
		Verifier:   v,
		Runner:     storage.NewTxRunner(db, zap.NewNop()),
		Orders:     orderrepository.Provide(),
		Drafts:     checkoutrepository.Provide(),
		Dispatcher: dispatcher,
		Metrics:    metrics.New(prometheus.NewRegistry()),
	})

	return svc, v, dispatcher, db
}

func seedDraft(t *testing.T, db *gorm.DB, merchantOrderID string, total int64) {
	t.Helper()

	cart, err := json.Marshal([]checkoutdomain.CartItem{
		{ProductID: "wreath-olive", Name: "Olive Wreath", UnitPrice: total, Quantity: 1},
	})
	require.NoError(t, err)
	party, err := json.Marshal(checkoutdomain.Party{
		Sender:    checkoutdomain.Contact{Name: "Ayşe Yılmaz", Email: "ayse@example.com"},
		Recipient: checkoutdomain.Contact{Name: "Mehmet Kaya", Phone: "+905551112233"},
		Delivery:  checkoutdomain.Delivery{Address: "Çiçek Sk. 5", City: "İstanbul"},
	})
	require.NoError(t, err)

	require.NoError(t, db.Create(&checkoutdomain.DraftSession{
		MerchantOrderID: merchantOrderID,
		Cart:            datatypes.JSON(cart),
		Party:           datatypes.JSON(party),
		SubtotalAmount:  total,
		TotalAmount:     total,
		Currency:        "TRY",
		CreatedAt:       time.Now().UTC(),
	}).Error)
}

func signedCallback(v *verifier.Verifier, merchantOID, status, totalAmount string) domain.Callback {
	cb := domain.Callback{
		MerchantOID: merchantOID,
		Status:      status,
		TotalAmount: totalAmount,
		PaymentType: "card",
		Currency:    "TL",
	}
	cb.Hash = v.Sign(cb.MerchantOID, cb.Status, cb.TotalAmount)
	return cb
}

func TestSuccessCallbackPromotesDraft(t *testing.T) {
	svc, v, dispatcher, db := setupPaymentService(t)
	seedDraft(t, db, "CD250101-AB12", 45000)

	outcome, err := svc.HandleCallback(context.Background(), signedCallback(v, "CD250101-AB12", domain.StatusSuccess, "450.00"))
	require.NoError(t, err)
	require.Equal(t, domain.OutcomePromoted, outcome)

	var order orderdomain.Order
	require.NoError(t, db.Where("order_number = ?", "CD250101-AB12").First(&order).Error)
	require.Equal(t, orderdomain.StatusConfirmed, order.Status)
	require.Equal(t, orderdomain.PaymentPaid, order.PaymentStatus)
	require.Equal(t, "CD250101-AB12", order.Payment.GatewayTransactionID)
	require.EqualValues(t, 45000, order.TotalAmount)

	var drafts int64
	require.NoError(t, db.Model(&checkoutdomain.DraftSession{}).Count(&drafts).Error)
	require.EqualValues(t, 0, drafts, "draft must be consumed on promotion")

	require.Len(t, dispatcher.Dispatched(), 1)
}

func TestReplayedCallbackIsNoOp(t *testing.T) {
	svc, v, dispatcher, db := setupPaymentService(t)
	seedDraft(t, db, "CD250101-AB12", 45000)

	cb := signedCallback(v, "CD250101-AB12", domain.StatusSuccess, "450.00")

	outcome, err := svc.HandleCallback(context.Background(), cb)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomePromoted, outcome)

	outcome, err = svc.HandleCallback(context.Background(), cb)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeDuplicate, outcome)

	var orders int64
	require.NoError(t, db.Model(&orderdomain.Order{}).Count(&orders).Error)
	require.EqualValues(t, 1, orders, "replay must not create a second order")

	require.Len(t, dispatcher.Dispatched(), 1, "replay must not re-notify")
}

func TestBadSignatureLeavesStoreUntouched(t *testing.T) {
	svc, _, dispatcher, db := setupPaymentService(t)
	seedDraft(t, db, "CD250101-AB12", 45000)

	cb := domain.Callback{
		MerchantOID: "CD250101-AB12",
		Status:      domain.StatusSuccess,
		TotalAmount: "450.00",
		Hash:        "Zm9yZ2VkIGhhc2g=",
	}

	_, err := svc.HandleCallback(context.Background(), cb)
	require.ErrorIs(t, err, domain.ErrInvalidSignature)

	var drafts, orders int64
	require.NoError(t, db.Model(&checkoutdomain.DraftSession{}).Count(&drafts).Error)
	require.NoError(t, db.Model(&orderdomain.Order{}).Count(&orders).Error)
	require.EqualValues(t, 1, drafts)
	require.EqualValues(t, 0, orders)
	require.Empty(t, dispatcher.Dispatched())
}

func TestMissingFieldsRejectedAsPayload(t *testing.T) {
	svc, _, _, _ := setupPaymentService(t)

	_, err := svc.HandleCallback(context.Background(), domain.Callback{
		MerchantOID: "CD250101-AB12",
		Status:      domain.StatusSuccess,
	})
	require.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestFailedPaymentDiscardsDraftWithoutOrder(t *testing.T) {
	svc, v, dispatcher, db := setupPaymentService(t)
	seedDraft(t, db, "CD250101-AB12", 45000)

	cb := signedCallback(v, "CD250101-AB12", "failed", "450.00")
	cb.FailedReasonCode = "51"
	cb.FailedReasonMsg = "insufficient funds"

	outcome, err := svc.HandleCallback(context.Background(), cb)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeFailedPayment, outcome)

	var drafts, orders int64
	require.NoError(t, db.Model(&checkoutdomain.DraftSession{}).Count(&drafts).Error)
	require.NoError(t, db.Model(&orderdomain.Order{}).Count(&orders).Error)
	require.EqualValues(t, 0, drafts, "failed attempt still consumes the draft")
	require.EqualValues(t, 0, orders)
	require.Empty(t, dispatcher.Dispatched())
}

func TestUnknownMerchantOrderAcknowledged(t *testing.T) {
	svc, v, _, db := setupPaymentService(t)

	outcome, err := svc.HandleCallback(context.Background(), signedCallback(v, "CD250101-ZZ99", domain.StatusSuccess, "450.00"))
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeDraftMissing, outcome)

	var orders int64
	require.NoError(t, db.Model(&orderdomain.Order{}).Count(&orders).Error)
	require.EqualValues(t, 0, orders, "never fabricate an order from partial data")
}

func TestPaymentDetailsRecordedFromCallback(t *testing.T) {
	svc, v, _, db := setupPaymentService(t)
	seedDraft(t, db, "CD250101-AB12", 45000)

	cb := signedCallback(v, "CD250101-AB12", domain.StatusSuccess, "450.00")
	cb.PaymentAmount = "455.50"
	cb.TestMode = "1"

	outcome, err := svc.HandleCallback(context.Background(), cb)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomePromoted, outcome)

	var order orderdomain.Order
	require.NoError(t, db.Where("order_number = ?", "CD250101-AB12").First(&order).Error)
	require.Equal(t, "card", order.Payment.PaymentType)
	require.EqualValues(t, 45550, order.Payment.PaymentAmount)
	require.Equal(t, "TL", order.Payment.Currency)
	require.True(t, order.Payment.TestMode)
}

func TestAmountParsing(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"450.00", 45000, true},
		{"450.5", 45050, true},
		{"450", 45000, true},
		{"0.09", 9, true},
		{"", 0, false},
		{"-1.00", 0, false},
		{"450.123", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := domain.ParseAmount(tc.in)
		if !tc.ok {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}
