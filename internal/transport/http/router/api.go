package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-storefront/internal/core/auth"
	"go-storefront/internal/transport/http/handler"
	mdw "go-storefront/internal/transport/http/middleware"
)

type APIDeps struct {
	JWT       *auth.JWTer
	Roles     auth.RoleSource
	Auth      *handler.AuthHandler
	Profile   *handler.ProfileHandler
	Products  *handler.ProductHandler
	Dashboard *handler.DashboardHandler
}

func NewAPIEngine(l *zap.Logger, d APIDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Public surface.
	api.POST("/auth/signup", d.Auth.Signup)
	api.POST("/auth/login", d.Auth.Login)
	api.POST("/auth/logout", d.Auth.Logout)
	api.GET("/auth/oauth/google", d.Auth.OAuthStart)
	api.GET("/auth/oauth/google/callback", d.Auth.OAuthCallback)
	api.GET("/products", d.Products.List)
	api.GET("/products/:id", d.Products.Get)

	// Session required.
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.JWT, d.Roles, ""))
	authed.GET("/profile", d.Profile.Get)
	authed.PATCH("/profile", d.Profile.Patch)
	authed.GET("/navigation", d.Dashboard.Navigation)

	// Mutating catalog operations require admin, independent of what the UI
	// chooses to show.
	adminOnly := api.Group("")
	adminOnly.Use(mdw.AuthJWT(d.JWT, d.Roles, auth.RoleAdmin))
	adminOnly.POST("/products", d.Products.Create)

	// Browser-facing pages: redirect, never a JSON 401.
	dash := r.Group("/dashboard")
	dash.Use(mdw.Gate(d.JWT, d.Roles))
	dash.GET("", d.Dashboard.Home)
	dash.GET("/profile", d.Dashboard.Profile)

	return r
}
