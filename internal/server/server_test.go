package server

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bloomloft/garland/internal/authorization"
	checkoutdomain "github.com/bloomloft/garland/internal/checkout/domain"
	"github.com/bloomloft/garland/internal/config"
	"github.com/bloomloft/garland/internal/observability/metrics"
	orderdomain "github.com/bloomloft/garland/internal/order/domain"
	paymentdomain "github.com/bloomloft/garland/internal/payment/domain"
)

type fakePaymentService struct {
	outcome  paymentdomain.Outcome
	err      error
	lastCall *paymentdomain.Callback
}

func (f *fakePaymentService) HandleCallback(ctx context.Context, cb paymentdomain.Callback) (paymentdomain.Outcome, error) {
	f.lastCall = &cb
	return f.outcome, f.err
}

type fakeCheckoutService struct {
	draft checkoutdomain.DraftSession
	err   error
}

func (f *fakeCheckoutService) CreateDraft(ctx context.Context, req checkoutdomain.CreateDraftRequest) (checkoutdomain.DraftSession, error) {
	return f.draft, f.err
}

func (f *fakeCheckoutService) GetDraft(ctx context.Context, merchantOrderID string) (checkoutdomain.DraftSession, error) {
	return f.draft, f.err
}

type fakeOrderService struct {
	order      orderdomain.Order
	err        error
	lastStatus orderdomain.OrderStatus
}

func (f *fakeOrderService) GetByOrderNumber(ctx context.Context, req orderdomain.GetOrderRequest) (orderdomain.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) GetByID(ctx context.Context, id snowflake.ID) (orderdomain.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) List(ctx context.Context, req orderdomain.ListOrderRequest) (orderdomain.ListOrderResponse, error) {
	if f.err != nil {
		return orderdomain.ListOrderResponse{}, f.err
	}
	return orderdomain.ListOrderResponse{Orders: []orderdomain.Order{f.order}, Total: 1, Page: 1, PageSize: 50}, nil
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, req orderdomain.UpdateStatusRequest) (orderdomain.Order, error) {
	if f.err != nil {
		return orderdomain.Order{}, f.err
	}
	f.lastStatus = req.NewStatus
	out := f.order
	out.Status = req.NewStatus
	return out, nil
}

func (f *fakeOrderService) Refund(ctx context.Context, req orderdomain.RefundRequest) (orderdomain.Order, error) {
	if f.err != nil {
		return orderdomain.Order{}, f.err
	}
	out := f.order
	out.PaymentStatus = orderdomain.PaymentRefunded
	return out, nil
}

type fakeAuthzService struct{}

func (f *fakeAuthzService) ResolveRole(apiKey string) (string, error) {
	switch apiKey {
	case "admin-key":
		return "admin", nil
	case "support-key":
		return "support", nil
	default:
		return "", authorization.ErrInvalidActor
	}
}

func (f *fakeAuthzService) Authorize(ctx context.Context, role, object, action string) error {
	if role == "admin" {
		return nil
	}
	if role == "support" && action == authorization.ActionOrderView {
		return nil
	}
	return authorization.ErrForbidden
}

type serverFakes struct {
	payment  *fakePaymentService
	checkout *fakeCheckoutService
	orders   *fakeOrderService
}

func newTestServer(t *testing.T) (*Server, *serverFakes) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fakes := &serverFakes{
		payment:  &fakePaymentService{outcome: paymentdomain.OutcomePromoted},
		checkout: &fakeCheckoutService{},
		orders:   &fakeOrderService{},
	}

	m := metrics.New(prometheus.NewRegistry())
	srv := NewServer(ServerParams{
		Gin:         NewEngine(zap.NewNop(), m),
		Cfg:         config.Config{},
		Log:         zap.NewNop(),
		CheckoutSvc: fakes.checkout,
		OrderSvc:    fakes.orders,
		PaymentSvc:  fakes.payment,
		AuthzSvc:    &fakeAuthzService{},
		Metrics:     m,
	})

	return srv, fakes
}
