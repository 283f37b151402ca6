package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	checkoutdomain "github.com/bloomloft/garland/internal/checkout/domain"
)

func (s *Server) CreateDraft(c *gin.Context) {
	var req checkoutdomain.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	draft, err := s.checkoutSvc.CreateDraft(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, draft)
}
