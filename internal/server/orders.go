package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	orderdomain "github.com/bloomloft/garland/internal/order/domain"
)

// GetOrder is the public tracking endpoint the gateway confirmation page
// polls while waiting for the callback to land, so it gets its own rate
// limit keyed by client IP.
func (s *Server) GetOrder(c *gin.Context) {
	if s.pollLimiter.Enabled() {
		result, err := s.pollLimiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.log.Warn("poll limiter unavailable, allowing request")
		} else if !result.Allowed {
			s.metrics.PollThrottled()
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			c.JSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
				Type:    "rate_limited",
				Message: "too many requests",
			}})
			return
		}
	}

	order, err := s.orderSvc.GetByOrderNumber(c.Request.Context(), orderdomain.GetOrderRequest{
		OrderNumber: c.Param("orderNumber"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
