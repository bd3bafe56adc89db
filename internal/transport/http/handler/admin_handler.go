package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"go-storefront/internal/service"
	"go-storefront/internal/transport/http/response"
)

// AdminHandler serves the back-office API; the whole group requires an
// admin session.
type AdminHandler struct {
	users    *service.UserAdminService
	products *service.ProductService
}

func NewAdminHandler(users *service.UserAdminService, products *service.ProductService) *AdminHandler {
	return &AdminHandler{users: users, products: products}
}

// ListUsers handles GET /admin/v1/users?q=&offset=&limit=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	page, err := h.users.List(c.Request.Context(), c.Query("q"), offset, limit)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, page)
}

// BanUser handles POST /admin/v1/users/:id/ban.
func (h *AdminHandler) BanUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.users.Ban(c.Request.Context(), id); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, gin.H{"id": id})
}

// Stats handles GET /admin/v1/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.products.Stats(c.Request.Context())
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, stats)
}
