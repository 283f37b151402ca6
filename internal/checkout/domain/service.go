package domain

import (
	"context"
	"errors"
)

type CreateDraftRequest struct {
	// MerchantOrderID may be supplied by the caller (it must match the id
	// embedded in the gateway redirect); when empty the service assigns one.
	MerchantOrderID string     `json:"merchant_order_id"`
	Items           []CartItem `json:"items"`
	Party           Party      `json:"party"`
	Amounts         Amounts    `json:"amounts"`
}

type Service interface {
	CreateDraft(ctx context.Context, req CreateDraftRequest) (DraftSession, error)
	GetDraft(ctx context.Context, merchantOrderID string) (DraftSession, error)
}

var (
	ErrInvalidItems   = errors.New("invalid_items")
	ErrInvalidParty   = errors.New("invalid_party")
	ErrInvalidAmounts = errors.New("invalid_amounts")
	ErrDraftExists    = errors.New("draft_exists")
	ErrDraftNotFound  = errors.New("draft_not_found")
)
