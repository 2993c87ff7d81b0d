package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/estatedesk/backend/internal/application/listingapp"
	"github.com/estatedesk/backend/internal/domain/shared"
	"github.com/estatedesk/backend/internal/interfaces/http/dto"
	"github.com/estatedesk/backend/internal/interfaces/http/middleware"
)

// SellerHandler exposes the seller mirror read surface. All mutations flow
// through the sync pipeline; this handler is read-only.
type SellerHandler struct {
	BaseHandler
	sellers *listingapp.SellerService
}

// NewSellerHandler creates a new SellerHandler
func NewSellerHandler(sellers *listingapp.SellerService) *SellerHandler {
	return &SellerHandler{sellers: sellers}
}

// List returns one page of active sellers
func (h *SellerHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.Search = req.Search

	sellers, total, err := h.sellers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sellers, total, filter.Page, filter.PageSize)
}

// Get returns a single seller with its properties
func (h *SellerHandler) Get(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Seller code is required")
		return
	}

	seller, err := h.sellers.Get(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seller)
}

// RegisterRoutes registers seller endpoints on the given router group
func (h *SellerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sellers := rg.Group("/sellers")
	{
		sellers.GET("", h.List)
		sellers.GET("/:code", h.Get)
	}
}
