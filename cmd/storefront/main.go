package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/auth"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/checkout"
	"github.com/vasiliy-maslov/storefront/internal/config"
	"github.com/vasiliy-maslov/storefront/internal/db"
	"github.com/vasiliy-maslov/storefront/internal/inventory"
	"github.com/vasiliy-maslov/storefront/internal/notification"
	"github.com/vasiliy-maslov/storefront/internal/order"
	"github.com/vasiliy-maslov/storefront/internal/product"
	"github.com/vasiliy-maslov/storefront/internal/transport"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront").Logger()

	log.Info().Msg("Storefront starting...")

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dbConn, err := db.New(cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	var cartStorage cart.Storage
	switch cfg.Cart.Storage {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		cartStorage = cart.NewRedisStorage(redisClient)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Cart storage: redis")
	default:
		cartStorage = cart.NewFileStorage(cfg.Cart.Dir)
		log.Info().Str("dir", cfg.Cart.Dir).Msg("Cart storage: file")
	}

	productRepo := product.NewRepository(dbConn.Pool)
	orderRepo := order.NewRepository(dbConn.Pool)
	notificationRepo := notification.NewRepository(dbConn.Pool)

	gateway := inventory.NewGateway(productRepo)
	carts := cart.NewManager(cartStorage)
	fanout := notification.NewFanout(notificationRepo, productRepo)
	orderSvc := order.NewService(orderRepo, gateway)
	checkoutSvc := checkout.NewService(auth.NewContextProvider(), gateway, orderRepo, fanout)

	router := transport.NewRouter(transport.Deps{
		Carts:         carts,
		Checkout:      checkoutSvc,
		Orders:        orderSvc,
		Notifications: notificationRepo,
		Inventory:     gateway,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
