package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bloomloft/garland/internal/checkout/domain"
	"github.com/bloomloft/garland/internal/clock"
	"github.com/bloomloft/garland/internal/config"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Cfg   config.Config
	Repo  domain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	clock  clock.Clock
	prefix string
	repo   domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("checkout.service"),
		clock:  p.Clock,
		prefix: p.Cfg.OrderNumberPrefix,
		repo:   p.Repo,
	}
}

func (s *Service) CreateDraft(ctx context.Context, req domain.CreateDraftRequest) (domain.DraftSession, error) {
	if len(req.Items) == 0 {
		return domain.DraftSession{}, domain.ErrInvalidItems
	}
	for _, item := range req.Items {
		if strings.TrimSpace(item.ProductID) == "" || item.Quantity < 1 || item.UnitPrice < 0 {
			return domain.DraftSession{}, domain.ErrInvalidItems
		}
	}
	if strings.TrimSpace(req.Party.Sender.Name) == "" || strings.TrimSpace(req.Party.Recipient.Name) == "" {
		return domain.DraftSession{}, domain.ErrInvalidParty
	}
	if strings.TrimSpace(req.Party.Delivery.Address) == "" {
		return domain.DraftSession{}, domain.ErrInvalidParty
	}
	if req.Amounts.Total <= 0 || req.Amounts.Subtotal < 0 || req.Amounts.Shipping < 0 || req.Amounts.Tax < 0 {
		return domain.DraftSession{}, domain.ErrInvalidAmounts
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Amounts.Currency))
	if currency == "" {
		currency = "TRY"
	}

	merchantOrderID := strings.TrimSpace(req.MerchantOrderID)
	if merchantOrderID == "" {
		merchantOrderID = s.newMerchantOrderID()
	}

	cart, err := json.Marshal(req.Items)
	if err != nil {
		return domain.DraftSession{}, err
	}
	party, err := json.Marshal(req.Party)
	if err != nil {
		return domain.DraftSession{}, err
	}

	draft := domain.DraftSession{
		MerchantOrderID: merchantOrderID,
		Cart:            datatypes.JSON(cart),
		Party:           datatypes.JSON(party),
		SubtotalAmount:  req.Amounts.Subtotal,
		ShippingAmount:  req.Amounts.Shipping,
		TaxAmount:       req.Amounts.Tax,
		TotalAmount:     req.Amounts.Total,
		Currency:        currency,
		CreatedAt:       s.clock.Now(),
	}

	inserted, err := s.repo.Insert(ctx, s.db, &draft)
	if err != nil {
		return domain.DraftSession{}, err
	}
	if !inserted {
		return domain.DraftSession{}, domain.ErrDraftExists
	}

	s.log.Info("draft session created",
		zap.String("merchant_order_id", merchantOrderID),
		zap.Int64("total_amount", draft.TotalAmount),
		zap.String("currency", currency),
	)
	return draft, nil
}

func (s *Service) GetDraft(ctx context.Context, merchantOrderID string) (domain.DraftSession, error) {
	merchantOrderID = strings.TrimSpace(merchantOrderID)
	if merchantOrderID == "" {
		return domain.DraftSession{}, domain.ErrDraftNotFound
	}

	draft, err := s.repo.Find(ctx, s.db, merchantOrderID, false)
	if err != nil {
		return domain.DraftSession{}, err
	}
	if draft == nil {
		return domain.DraftSession{}, domain.ErrDraftNotFound
	}
	return *draft, nil
}

// newMerchantOrderID builds a human-friendly id such as CD250101-AB12:
// configured prefix, date, and the tail of a fresh ULID for uniqueness.
func (s *Service) newMerchantOrderID() string {
	now := s.clock.Now()
	suffix := ulid.Make().String()
	return fmt.Sprintf("%s%s-%s", s.prefix, now.Format("060102"), suffix[len(suffix)-4:])
}
