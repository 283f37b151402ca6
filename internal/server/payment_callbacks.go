package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/bloomloft/garland/internal/payment/domain"
)

// Gateway response contract: the literal body "OK" stops retries, anything
// else makes the gateway re-deliver. Never JSON on this route.
const (
	gatewayAck  = "OK"
	gatewayNack = "FAIL"
)

func (s *Server) PaymentCallback(c *gin.Context) {
	var cb paymentdomain.Callback
	if err := c.ShouldBind(&cb); err != nil {
		c.String(http.StatusBadRequest, gatewayNack)
		return
	}

	_, err := s.paymentSvc.HandleCallback(c.Request.Context(), cb)
	switch {
	case err == nil:
		c.String(http.StatusOK, gatewayAck)
	case errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidSignature):
		c.String(http.StatusBadRequest, gatewayNack)
	default:
		// Commit failures are retryable; idempotency makes the retry safe.
		c.String(http.StatusInternalServerError, gatewayNack)
	}
}
