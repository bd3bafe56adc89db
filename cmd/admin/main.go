package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-storefront/internal/core/auth"
	"go-storefront/internal/core/cache"
	"go-storefront/internal/core/config"
	"go-storefront/internal/core/database"
	"go-storefront/internal/core/logger"
	"go-storefront/internal/core/server"
	"go-storefront/internal/repo"
	"go-storefront/internal/service"
	"go-storefront/internal/transport/http/handler"
	"go-storefront/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	conn := database.NewConnector(cfg.Mongo.URI)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	client, err := conn.Connect(ctx)
	cancel()
	if err != nil {
		log.Fatal("mongo connect", zap.Error(err))
	}
	db := client.Database(cfg.Mongo.Database)

	users, err := repo.NewUserRepo(db)
	if err != nil {
		log.Fatal("user repo init", zap.Error(err))
	}
	products := repo.NewProductRepo(db)

	var rdb *cache.Cache
	if cfg.Redis.Addr != "" {
		rdb = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	authSvc := service.NewAuthService(users, jwter, log)
	productSvc := service.NewProductService(products, rdb, log)
	adminSvc := service.NewUserAdminService(users, log)

	r := router.NewAdminEngine(log, router.AdminDeps{
		JWT:      jwter,
		Roles:    authSvc,
		Admin:    handler.NewAdminHandler(adminSvc, productSvc),
		Products: handler.NewProductHandler(productSvc),
	})

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started", zap.String("addr", addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = conn.Close(shutdownCtx)
	log.Info("admin api stopped gracefully")
}
