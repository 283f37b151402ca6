package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/bloomloft/garland/internal/authorization"
	orderdomain "github.com/bloomloft/garland/internal/order/domain"
)

func (s *Server) ListOrders(c *gin.Context) {
	if err := s.authzSvc.Authorize(c.Request.Context(), actorRole(c), authorization.ObjectOrder, authorization.ActionOrderView); err != nil {
		AbortWithError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	resp, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListOrderRequest{
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetOrderByID(c *gin.Context) {
	if err := s.authzSvc.Authorize(c.Request.Context(), actorRole(c), authorization.ObjectOrder, authorization.ActionOrderView); err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseOrderID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	order, err := s.orderSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

type updateStatusBody struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	if err := s.authzSvc.Authorize(c.Request.Context(), actorRole(c), authorization.ObjectOrder, authorization.ActionOrderUpdateStatus); err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseOrderID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var body updateStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	order, err := s.orderSvc.UpdateStatus(c.Request.Context(), orderdomain.UpdateStatusRequest{
		ID:        id,
		NewStatus: orderdomain.OrderStatus(body.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (s *Server) RefundOrder(c *gin.Context) {
	if err := s.authzSvc.Authorize(c.Request.Context(), actorRole(c), authorization.ObjectOrder, authorization.ActionOrderRefund); err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseOrderID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	order, err := s.orderSvc.Refund(c.Request.Context(), orderdomain.RefundRequest{ID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func parseOrderID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, orderdomain.ErrInvalidID
	}
	return id, nil
}
