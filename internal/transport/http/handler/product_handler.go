package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"go-storefront/internal/apperr"
	"go-storefront/internal/core/auth"
	"go-storefront/internal/service"
	"go-storefront/internal/transport/http/middleware"
	"go-storefront/internal/transport/http/response"
)

type ProductHandler struct {
	products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List handles GET /api/products?limit=N, newest first. A limit that does
// not parse to a positive integer is treated as absent.
func (h *ProductHandler) List(c *gin.Context) {
	var limit int64
	if n, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && n > 0 {
		limit = n
	}
	ps, err := h.products.List(c.Request.Context(), limit)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, ps)
}

// Get handles GET /api/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, p)
}

// Create handles POST /api/products. The route sits behind an admin-gated
// group and the service re-checks the role claim.
func (h *ProductHandler) Create(c *gin.Context) {
	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, apperr.Invalid("invalid payload"))
		return
	}
	role := auth.ParseRole(c.GetString(middleware.KeyRole))
	p, err := h.products.Create(c.Request.Context(), role, in)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, p)
}
