package main

import (
	"context"
	"log"
	"net/http"

	"electrohive-be/internal/api"
	"electrohive-be/internal/auth"
	"electrohive-be/internal/cart"
	"electrohive-be/internal/config"
	"electrohive-be/internal/db"
	"electrohive-be/internal/logger"
	"electrohive-be/internal/metrics"
	"electrohive-be/internal/order"
	"electrohive-be/internal/payment"
	"electrohive-be/internal/product"
	"electrohive-be/internal/user"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := db.Connect(context.Background(), cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer db.Disconnect(context.Background(), database)

	var viewCache cart.ViewCache = cart.NoopCache{}
	if cfg.RedisAddr != "" {
		viewCache = cart.NewRedisViewCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret)

	productRepo := product.NewRepository(database)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo, tokens)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, productRepo, viewCache)

	orderRepo := order.NewRepository(database)

	gateway := payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	paymentSvc := payment.NewService(gateway, cfg.RazorpayKeySecret, orderRepo, &metrics.PaymentMetrics{})

	router := api.NewRouter(tokens, api.Handlers{
		Auth:    api.NewAuthHandler(userSvc),
		Product: api.NewProductHandler(productRepo),
		Cart:    api.NewCartHandler(cartSvc),
		Payment: api.NewPaymentHandler(paymentSvc),
		Order:   api.NewOrderHandler(orderRepo, cartSvc),
	})

	logger.L().Sugar().Infof("server listening on :%s", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, router))
}
