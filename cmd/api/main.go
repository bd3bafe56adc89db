package main

import (
	"context"
	"errors"
	"fmt"
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
	"go-storefront/internal/core/oauth"
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

	// One store connection for the process; unreachable store is fatal.
	conn := database.NewConnector(cfg.Mongo.URI)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	client, err := conn.Connect(ctx)
	cancel()
	if err != nil {
		log.Fatal("mongo connect", zap.Error(err))
	}
	db := client.Database(cfg.Mongo.Database)
	log.Info("store connected", zap.String("database", cfg.Mongo.Database))

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
	google := oauth.NewGoogle(oauth.Config{
		ClientID:     cfg.OAuth.Google.ClientID,
		ClientSecret: cfg.OAuth.Google.ClientSecret,
		RedirectURL:  cfg.OAuth.Google.RedirectURL,
	})

	authSvc := service.NewAuthService(users, jwter, log)
	profileSvc := service.NewProfileService(users)
	productSvc := service.NewProductService(products, rdb, log)

	r := router.NewAPIEngine(log, router.APIDeps{
		JWT:       jwter,
		Roles:     authSvc,
		Auth:      handler.NewAuthHandler(authSvc, google, cfg.JWT.AccessTokenTTLMin*60),
		Profile:   handler.NewProfileHandler(profileSvc),
		Products:  handler.NewProductHandler(productSvc),
		Dashboard: handler.NewDashboardHandler(productSvc, profileSvc),
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("storefront api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("storefront api start FAILED", zap.Error(err))
		}
	}()
	log.Info("storefront api started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = conn.Close(shutdownCtx)
	log.Info("storefront api stopped gracefully")
}
