package handler

import (
	"github.com/gin-gonic/gin"

	"go-storefront/internal/apperr"
	"go-storefront/internal/service"
	"go-storefront/internal/transport/http/middleware"
	"go-storefront/internal/transport/http/response"
)

type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(c *gin.Context) {
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

// Patch handles PATCH /api/profile. Only fullName and image are mutable.
func (h *ProfileHandler) Patch(c *gin.Context) {
	email := c.GetString(middleware.KeyEmail)
	if email == "" {
		response.Err(c, apperr.Unauthorized("unauthorized"))
		return
	}
	var in service.ProfileUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, apperr.Invalid("invalid payload"))
		return
	}
	id, err := h.profiles.Update(c.Request.Context(), email, in)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, id)
}
