package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"food-order-service/internal/api"
	"food-order-service/internal/config"
	"food-order-service/internal/consumer"
	"food-order-service/internal/repository"
	"food-order-service/internal/service"
	"food-order-service/migrations"
)

func connectDB(cfg *config.Config) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", cfg.DSN())
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Info().Msgf("Connected to DB %s", cfg.DBName)
				return db, nil
			}
		}
		log.Warn().Err(err).Msgf("Retry %d: failed to connect to DB %s (%s:%s)", i+1, cfg.DBName, cfg.DBHost, cfg.DBPort)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %w", cfg.DBName, cfg.DBHost, cfg.DBPort, err)
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	db, err := connectDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := migrations.AutoMigrate(db, 3, 2*time.Second); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate tables")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	var orderEvents service.MessageWriter
	if !cfg.IsTest() {
		kafkaWriter := config.NewKafkaWriter(cfg.Brokers(), cfg.OrderTopic)
		defer kafkaWriter.Close()
		orderEvents = kafkaWriter
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	menuRepo := repository.NewMenuItemRepository(db)
	cartRepo := repository.NewCartRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	userService := service.NewUserService(userRepo, cfg.JWTSecret)
	categoryService := service.NewCategoryService(categoryRepo, rdb)
	menuService := service.NewMenuItemService(menuRepo, rdb)
	cartService := service.NewCartService(cartRepo, menuService)
	voucherService := service.NewVoucherService(voucherRepo)
	orderService := service.NewOrderService(orderRepo, menuService, voucherService, orderEvents, rdb)

	e := api.NewRouter(api.Handlers{
		Users:      api.NewUserHandler(userService),
		Categories: api.NewCategoryHandler(categoryService),
		Menu:       api.NewMenuItemHandler(menuService),
		Cart:       api.NewCartHandler(cartService),
		Vouchers:   api.NewVoucherHandler(voucherService),
		Orders:     api.NewOrderHandler(orderService),
	}, api.RouterConfig{
		JWTSecret: cfg.JWTSecret,
		RateLimit: cfg.RateLimitRPS,
		RateBurst: cfg.RateLimitBurst,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.IsTest() {
		reader := config.NewKafkaReader(cfg.Brokers(), cfg.OrderTopic, cfg.ConsumerGroup)
		defer reader.Close()
		go consumer.NewConsumer(reader, voucherRepo).Start(ctx)
	}

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down server")
	}
}
