package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-storefront/internal/apperr"
	"go-storefront/internal/core/oauth"
	"go-storefront/internal/service"
	"go-storefront/internal/transport/http/middleware"
	"go-storefront/internal/transport/http/response"
	"go-storefront/pkg/utils"
)

const (
	stateCookie    = "oauth_state"
	callbackCookie = "oauth_callback"
)

type AuthHandler struct {
	auth      *service.AuthService
	google    *oauth.Google
	cookieTTL int // seconds, for the session cookie
}

func NewAuthHandler(auth *service.AuthService, google *oauth.Google, sessionTTLSec int) *AuthHandler {
	return &AuthHandler{auth: auth, google: google, cookieTTL: sessionTTLSec}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var in service.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, apperr.Invalid("invalid payload"))
		return
	}
	if err := h.auth.Signup(c.Request.Context(), in); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "message": "User created"})
}

type loginIn struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login. An explicit callbackUrl query (set by
// the gate's redirect) wins over the default /products target.
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, apperr.Invalid("email and password are required"))
		return
	}
	res, err := h.auth.Login(c.Request.Context(), in.Email, in.Password, c.Query("callbackUrl"))
	if err != nil {
		response.Err(c, err)
		return
	}
	h.setSessionCookie(c, res.Token)
	response.OK(c, res)
}

// Logout discards the session client-side; there is no server-side
// revocation, the token stays valid until expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	response.OK(c, gin.H{"success": true})
}

// OAuthStart handles GET /api/auth/oauth/google: stash the CSRF state and the
// post-login destination, then hand off to the provider.
func (h *AuthHandler) OAuthStart(c *gin.Context) {
	state := utils.NewID()
	c.SetCookie(stateCookie, state, 600, "/", "", false, true)
	// Absolute and protocol-relative destinations are never persisted.
	if cb := c.Query("callbackUrl"); cb != "" && cb == service.RedirectTarget(cb) {
		c.SetCookie(callbackCookie, cb, 600, "/", "", false, true)
	}
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// OAuthCallback handles GET /api/auth/oauth/google/callback.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		response.Err(c, apperr.Unauthorized("state mismatch"))
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		response.Err(c, apperr.Unauthorized("missing authorization code"))
		return
	}
	profile, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		response.Err(c, apperr.Unauthorized("oauth exchange failed"))
		return
	}

	res, err := h.auth.FederatedSignIn(c.Request.Context(), *profile)
	if err != nil {
		response.Err(c, err)
		return
	}

	redirectTo := res.RedirectTo
	if cb, err := c.Cookie(callbackCookie); err == nil && cb != "" {
		// The cookie is sanitized again here; it crossed the browser.
		redirectTo = service.RedirectTarget(cb)
		c.SetCookie(callbackCookie, "", -1, "/", "", false, true)
	}
	h.setSessionCookie(c, res.Token)
	c.Redirect(http.StatusFound, redirectTo)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.SessionCookie, token, h.cookieTTL, "/", "", false, true)
}
