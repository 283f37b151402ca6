package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	checkoutdomain "github.com/bloomloft/garland/internal/checkout/domain"
	"github.com/bloomloft/garland/internal/clock"
	notificationdomain "github.com/bloomloft/garland/internal/notification/domain"
	"github.com/bloomloft/garland/internal/observability/metrics"
	orderdomain "github.com/bloomloft/garland/internal/order/domain"
	"github.com/bloomloft/garland/internal/payment/domain"
	"github.com/bloomloft/garland/internal/payment/verifier"
	"github.com/bloomloft/garland/internal/storage"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	GenID      *snowflake.Node
	Verifier   *verifier.Verifier
	Runner     storage.AtomicRunner
	Orders     orderdomain.Repository
	Drafts     checkoutdomain.Repository
	Dispatcher notificationdomain.Dispatcher `optional:"true"`
	Metrics    *metrics.Metrics
}

type service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	verifier   *verifier.Verifier
	runner     storage.AtomicRunner
	orders     orderdomain.Repository
	drafts     checkoutdomain.Repository
	dispatcher notificationdomain.Dispatcher
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		verifier:   p.Verifier,
		runner:     p.Runner,
		orders:     p.Orders,
		drafts:     p.Drafts,
		dispatcher: p.Dispatcher,
		metrics:    p.Metrics,
	}
}

// HandleCallback runs the full pipeline for one gateway callback: verify,
// pre-check for a replay, then promote the draft inside one atomic unit.
// The draft is deleted unconditionally in that unit, so a replayed
// callback finds nothing to promote and exits as a no-op even without the
// pre-check.
func (s *service) HandleCallback(ctx context.Context, cb domain.Callback) (domain.Outcome, error) {
	if err := cb.Validate(); err != nil {
		s.metrics.CallbackRejected(metrics.RejectReasonPayload)
		s.log.Warn("callback payload malformed",
			zap.String("merchant_oid", cb.MerchantOID),
		)
		return "", err
	}

	if !s.verifier.Verify(cb) {
		s.metrics.CallbackRejected(metrics.RejectReasonSignature)
		s.log.Warn("callback signature rejected",
			zap.String("merchant_oid", cb.MerchantOID),
			zap.String("status", cb.Status),
		)
		return "", domain.ErrInvalidSignature
	}

	existing, err := s.orders.FindByGatewayTransactionID(ctx, s.db, cb.MerchantOID)
	if err != nil {
		return "", fmt.Errorf("idempotency pre-check %s: %w", cb.MerchantOID, err)
	}
	if existing != nil {
		s.metrics.CallbackIgnored(metrics.IgnoreReasonDuplicate)
		s.log.Info("callback already processed",
			zap.String("merchant_oid", cb.MerchantOID),
			zap.String("order_number", existing.OrderNumber),
		)
		return domain.OutcomeDuplicate, nil
	}

	totalAmount, err := domain.ParseAmount(cb.TotalAmount)
	if err != nil {
		s.metrics.CallbackRejected(metrics.RejectReasonPayload)
		return "", err
	}
	paymentAmount := totalAmount
	if cb.PaymentAmount != "" {
		if paymentAmount, err = domain.ParseAmount(cb.PaymentAmount); err != nil {
			s.metrics.CallbackRejected(metrics.RejectReasonPayload)
			return "", err
		}
	}

	var (
		outcome  domain.Outcome
		promoted *orderdomain.Order
	)
	err = s.runner.RunAtomic(ctx, cb.MerchantOID, func(tx *gorm.DB) error {
		draft, err := s.drafts.Find(ctx, tx, cb.MerchantOID, s.runner.Transactional())
		if err != nil {
			return err
		}
		if draft == nil {
			// Already consumed or never existed. Both look the same here
			// and both must stop gateway retries.
			outcome = domain.OutcomeDraftMissing
			return nil
		}

		if cb.Success() {
			order := s.buildOrder(draft, cb, paymentAmount)
			inserted, err := s.orders.Insert(ctx, tx, order)
			if err != nil {
				return err
			}
			if inserted {
				outcome = domain.OutcomePromoted
				promoted = order
			} else {
				outcome = domain.OutcomeDuplicate
			}
		} else {
			outcome = domain.OutcomeFailedPayment
		}

		return s.drafts.Delete(ctx, tx, cb.MerchantOID)
	})
	if err != nil {
		s.metrics.CallbackRejected(metrics.RejectReasonCommit)
		s.log.Error("promotion commit failed",
			zap.String("merchant_oid", cb.MerchantOID),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %w", domain.ErrCommitFailed, err)
	}

	switch outcome {
	case domain.OutcomePromoted:
		s.metrics.OrderPromoted()
		if promoted.TotalAmount != totalAmount {
			s.log.Warn("callback amount differs from draft",
				zap.String("merchant_oid", cb.MerchantOID),
				zap.Int64("draft_total", promoted.TotalAmount),
				zap.Int64("callback_total", totalAmount),
			)
		}
		s.log.Info("draft promoted to order",
			zap.String("merchant_oid", cb.MerchantOID),
			zap.Int64("order_id", int64(promoted.ID)),
			zap.Int64("total_amount", promoted.TotalAmount),
			zap.Bool("test_mode", cb.IsTest()),
		)
		if s.dispatcher != nil {
			s.dispatcher.Dispatch(ctx, promoted)
		}
	case domain.OutcomeFailedPayment:
		s.metrics.CallbackIgnored(metrics.IgnoreReasonFailedPayment)
		s.log.Info("payment failed, draft discarded",
			zap.String("merchant_oid", cb.MerchantOID),
			zap.String("reason_code", cb.FailedReasonCode),
			zap.String("reason_msg", cb.FailedReasonMsg),
		)
	case domain.OutcomeDuplicate:
		s.metrics.CallbackIgnored(metrics.IgnoreReasonDuplicate)
		s.log.Info("concurrent callback lost the insert race",
			zap.String("merchant_oid", cb.MerchantOID),
		)
	case domain.OutcomeDraftMissing:
		s.metrics.CallbackIgnored(metrics.IgnoreReasonDraftMissing)
		s.log.Warn("no draft for callback",
			zap.String("merchant_oid", cb.MerchantOID),
			zap.String("status", cb.Status),
		)
	}

	return outcome, nil
}

func (s *service) buildOrder(draft *checkoutdomain.DraftSession, cb domain.Callback, paymentAmount int64) *orderdomain.Order {
	now := s.clock.Now()
	currency := cb.Currency
	if currency == "" {
		currency = draft.Currency
	}

	return &orderdomain.Order{
		ID:            s.genID.Generate(),
		OrderNumber:   draft.MerchantOrderID,
		Status:        orderdomain.StatusConfirmed,
		PaymentStatus: orderdomain.PaymentPaid,
		Payment: orderdomain.PaymentDetails{
			GatewayTransactionID: cb.MerchantOID,
			PaymentType:          cb.PaymentType,
			PaymentAmount:        paymentAmount,
			Currency:             currency,
			TestMode:             cb.IsTest(),
			ProcessedAt:          now,
		},
		Items:          draft.Cart,
		Party:          draft.Party,
		SubtotalAmount: draft.SubtotalAmount,
		ShippingAmount: draft.ShippingAmount,
		TaxAmount:      draft.TaxAmount,
		TotalAmount:    draft.TotalAmount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
