package handler

import (
	"github.com/gin-gonic/gin"

	"go-storefront/internal/apperr"
	"go-storefront/internal/core/auth"
	"go-storefront/internal/service"
	"go-storefront/internal/transport/http/middleware"
	"go-storefront/internal/transport/http/response"
)

// navEntry is one navigation item the client may render for the session's
// role. The real enforcement happens at the API boundaries; this only trims
// what the UI offers.
type navEntry struct {
	Label      string          `json:"label"`
	Path       string          `json:"path"`
	Capability auth.Capability `json:"capability"`
}

var navEntries = []navEntry{
	{Label: "Products", Path: "/products", Capability: auth.CapViewCatalog},
	{Label: "Dashboard", Path: "/dashboard", Capability: auth.CapViewDashboard},
	{Label: "Profile", Path: "/dashboard/profile", Capability: auth.CapEditProfile},
	{Label: "Add Product", Path: "/dashboard/add-product", Capability: auth.CapCreateProduct},
	{Label: "Users", Path: "/dashboard/users", Capability: auth.CapManageUsers},
}

type DashboardHandler struct {
	products *service.ProductService
	profiles *service.ProfileService
}

func NewDashboardHandler(products *service.ProductService, profiles *service.ProfileService) *DashboardHandler {
	return &DashboardHandler{products: products, profiles: profiles}
}

// Navigation handles GET /api/navigation.
func (h *DashboardHandler) Navigation(c *gin.Context) {
	role := auth.ParseRole(c.GetString(middleware.KeyRole))
	out := make([]navEntry, 0, len(navEntries))
	for _, e := range navEntries {
		if role.Can(e.Capability) {
			out = append(out, e)
		}
	}
	response.OK(c, out)
}

// Home handles GET /dashboard: the signed-in identity plus the analytics the
// charts render.
func (h *DashboardHandler) Home(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Err(c, apperr.Unauthorized("unauthorized"))
		return
	}
	stats, err := h.products.Stats(c.Request.Context())
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, gin.H{
		"user": gin.H{
			"id":    claims.Subject,
			"email": claims.Email,
			"name":  claims.Name,
			"image": claims.Picture,
			"role":  claims.Role,
		},
		"stats": stats,
	})
}

// Profile handles GET /dashboard/profile.
func (h *DashboardHandler) Profile(c *gin.Context) {
	email := c.GetString(middleware.KeyEmail)
	if email == "" {
		response.Err(c, apperr.Unauthorized("unauthorized"))
		return
	}
	id, err := h.profiles.Get(c.Request.Context(), email)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, id)
}
