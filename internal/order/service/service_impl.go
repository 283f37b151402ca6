package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"

	"github.com/bloomloft/garland/internal/clock"
	"github.com/bloomloft/garland/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("order.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) GetByOrderNumber(ctx context.Context, req domain.GetOrderRequest) (domain.Order, error) {
	orderNumber := strings.TrimSpace(req.OrderNumber)
	if orderNumber == "" {
		return domain.Order{}, domain.ErrInvalidID
	}

	order, err := s.repo.FindByOrderNumber(ctx, s.db, orderNumber)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	return *order, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Order, error) {
	if id == 0 {
		return domain.Order{}, domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	return *order, nil
}

func (s *Service) List(ctx context.Context, req domain.ListOrderRequest) (domain.ListOrderResponse, error) {
	status := strings.TrimSpace(req.Status)
	if status != "" && !domain.ValidStatus(domain.OrderStatus(status)) {
		return domain.ListOrderResponse{}, domain.ErrInvalidStatus
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}

	items, total, err := s.repo.List(ctx, s.db, domain.ListOrderFilter{
		Status: status,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return domain.ListOrderResponse{}, err
	}

	return domain.ListOrderResponse{
		Orders:   items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// UpdateStatus applies a single admin-triggered lifecycle move. Invalid
// transitions are rejected and leave the row untouched. Concurrent admin
// edits are last-write-wins.
func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.Order, error) {
	if req.ID == 0 {
		return domain.Order{}, domain.ErrInvalidID
	}
	if !domain.ValidStatus(req.NewStatus) {
		return domain.Order{}, domain.ErrInvalidStatus
	}

	order, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}

	if !domain.CanTransition(order.Status, req.NewStatus) {
		s.log.Warn("rejected status transition",
			zap.String("order_number", order.OrderNumber),
			zap.String("from", string(order.Status)),
			zap.String("to", string(req.NewStatus)),
		)
		return domain.Order{}, domain.ErrInvalidTransition
	}

	now := s.clock.Now()
	if err := s.repo.UpdateStatus(ctx, s.db, order.ID, req.NewStatus, now); err != nil {
		return domain.Order{}, err
	}

	order.Status = req.NewStatus
	order.UpdatedAt = now

	s.log.Info("order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(req.NewStatus)),
	)
	return *order, nil
}

// Refund flips the payment axis from paid to refunded. It is the only
// payment-status edit available to admins; everything else is written by
// the promotion flow.
func (s *Service) Refund(ctx context.Context, req domain.RefundRequest) (domain.Order, error) {
	if req.ID == 0 {
		return domain.Order{}, domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	if order.PaymentStatus != domain.PaymentPaid {
		return domain.Order{}, domain.ErrNotRefundable
	}

	now := s.clock.Now()
	if err := s.repo.UpdatePaymentStatus(ctx, s.db, order.ID, domain.PaymentRefunded, now); err != nil {
		return domain.Order{}, err
	}

	order.PaymentStatus = domain.PaymentRefunded
	order.UpdatedAt = now

	s.log.Info("order refunded", zap.String("order_number", order.OrderNumber))
	return *order, nil
}
