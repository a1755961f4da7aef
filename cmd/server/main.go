package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/elgransazon/pos-backend/internal/config"
	"github.com/elgransazon/pos-backend/internal/database"
	"github.com/elgransazon/pos-backend/internal/handler"
	"github.com/elgransazon/pos-backend/internal/middleware"
	"github.com/elgransazon/pos-backend/internal/queue"
	"github.com/elgransazon/pos-backend/internal/repository"
	"github.com/elgransazon/pos-backend/internal/router"
	"github.com/elgransazon/pos-backend/internal/service"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	orderRepo := repository.NewOrderRepo(db)
	menuRepo := repository.NewMenuRepo(db)
	ingredientRepo := repository.NewIngredientRepo(db)
	tableRepo := repository.NewTableRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)

	if err := settingsRepo.SeedDefault(ctx); err != nil {
		log.Fatalf("seed settings: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: order numbering falls back to the database, rate limiting disabled")
	}

	stockSvc := service.NewStockService(ingredientRepo, menuRepo)
	tableSvc := service.NewTableService(db, tableRepo, reservationRepo, settingsRepo)
	numbers := service.NewNumberGenerator(rdb, orderRepo)
	orderSvc := service.NewOrderService(db, orderRepo, menuRepo, settingsRepo, stockSvc, tableSvc, numbers)
	reservationSvc := service.NewReservationService(db, reservationRepo, tableRepo, settingsRepo)

	// Kitchen log consumer runs for the life of the process and reconnects
	// on broker failures by itself.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterOrders(e, handler.NewOrderHandler(orderSvc))
	router.RegisterTables(e, handler.NewTableHandler(tableSvc))
	router.RegisterReservations(e, handler.NewReservationHandler(reservationSvc))
	router.RegisterStock(e, handler.NewStockHandler(stockSvc, ingredientRepo, menuRepo))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
