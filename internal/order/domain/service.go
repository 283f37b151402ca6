package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type GetOrderRequest struct {
	OrderNumber string
}

type ListOrderRequest struct {
	Status   string
	Page     int
	PageSize int
}

type ListOrderResponse struct {
	Orders   []Order `json:"orders"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

type UpdateStatusRequest struct {
	ID        snowflake.ID
	NewStatus OrderStatus
}

type RefundRequest struct {
	ID snowflake.ID
}

type Service interface {
	GetByOrderNumber(ctx context.Context, req GetOrderRequest) (Order, error)
	GetByID(ctx context.Context, id snowflake.ID) (Order, error)
	List(ctx context.Context, req ListOrderRequest) (ListOrderResponse, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (Order, error)
	Refund(ctx context.Context, req RefundRequest) (Order, error)
}

var (
	ErrNotFound          = errors.New("not_found")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrNotRefundable     = errors.New("not_refundable")
)
