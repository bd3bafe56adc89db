package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-storefront/internal/core/auth"
	"go-storefront/internal/transport/http/handler"
	mdw "go-storefront/internal/transport/http/middleware"
)

type AdminDeps struct {
	JWT      *auth.JWTer
	Roles    auth.RoleSource
	Admin    *handler.AdminHandler
	Products *handler.ProductHandler
}

func NewAdminEngine(l *zap.Logger, d AdminDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		ginzap.Ginzap(l, time.RFC3339, true),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Every back-office route requires an admin session.
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, d.Roles, auth.RoleAdmin))
	admin.GET("/users", d.Admin.ListUsers)
	admin.POST("/users/:id/ban", d.Admin.BanUser)
	admin.GET("/stats", d.Admin.Stats)
	admin.POST("/products", d.Products.Create)

	return r
}
