package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/estatedesk/backend/internal/application/buyerapp"
	"github.com/estatedesk/backend/internal/domain/shared"
	"github.com/estatedesk/backend/internal/interfaces/http/dto"
	"github.com/estatedesk/backend/internal/interfaces/http/middleware"
)

// BuyerHandler exposes the buyer mirror read surface, with workflow status
// derived per record on read.
type BuyerHandler struct {
	BaseHandler
	buyers *buyerapp.BuyerService
}

// NewBuyerHandler creates a new BuyerHandler
func NewBuyerHandler(buyers *buyerapp.BuyerService) *BuyerHandler {
	return &BuyerHandler{buyers: buyers}
}

// List returns one page of active buyers with derived statuses
func (h *BuyerHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.Search = req.Search

	buyers, total, err := h.buyers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, buyers, total, filter.Page, filter.PageSize)
}

// Get returns a single buyer with derived status
func (h *BuyerHandler) Get(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Buyer code is required")
		return
	}

	buyer, err := h.buyers.Get(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, buyer)
}

// RegisterRoutes registers buyer endpoints on the given router group
func (h *BuyerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	buyers := rg.Group("/buyers")
	{
		buyers.GET("", h.List)
		buyers.GET("/:code", h.Get)
	}
}
