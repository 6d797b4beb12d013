package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mysteryvault/storefront/internal/api"
	"github.com/mysteryvault/storefront/internal/cache"
	"github.com/mysteryvault/storefront/internal/config"
	"github.com/mysteryvault/storefront/internal/events"
	"github.com/mysteryvault/storefront/internal/repository"
	"github.com/mysteryvault/storefront/internal/service"
	"github.com/mysteryvault/storefront/internal/token"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "storefront").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	maker, err := token.NewJWTMaker(cfg.JWTKey, 7*24*time.Hour)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid JWT signing key")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Client().Disconnect(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = repository.EnsureIndexes(ctx, db)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create indexes")
	}

	cartRepo := repository.NewMongoCartRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	userRepo := repository.NewMongoUserRepository(db)
	addressRepo := repository.NewMongoAddressRepository(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaTopic, strings.Split(cfg.KafkaBrokers, ",")...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info().Str("topic", cfg.KafkaTopic).Msg("publishing order events to Kafka")
	} else {
		logger.Info().Msg("no Kafka brokers configured, order events disabled")
	}

	gateway := service.NewBreakerGateway(service.NewSimulatedGateway(cfg.PaymentDelay, cfg.PaymentFailureRate))

	carts := service.NewCartService(cartRepo, cache.NewRedisCache(redisClient), logger)
	orders := service.NewOrderService(orderRepo, carts, gateway, publisher, logger)
	users := service.NewUserService(userRepo, addressRepo, carts, logger)

	router := api.NewRouter(api.RouterDeps{
		Carts:        carts,
		Orders:       orders,
		Users:        users,
		TokenMaker:   maker,
		Logger:       logger,
		SecureCookie: cfg.SecureCookie,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("storefront listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}
