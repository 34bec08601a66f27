package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ifixzone/shop/internal/cart"
	"github.com/ifixzone/shop/internal/config"
	"github.com/ifixzone/shop/internal/handlers"
	"github.com/ifixzone/shop/internal/logging"
	loggingmw "github.com/ifixzone/shop/internal/middleware/logging"
	"github.com/ifixzone/shop/internal/mykafka"
	"github.com/ifixzone/shop/internal/notify"
	"github.com/ifixzone/shop/internal/order"
	httpserver "github.com/ifixzone/shop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	logger := logging.New(configuration.LOG_LEVEL).With("service", "shop")
	slog.SetDefault(logger)

	jwtSecret := []byte(configuration.JWT_SECRET)

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	notifier := &notify.Notifier{DB: db, Producer: prod}

	cartSvc := &cart.Service{DB: db}
	orderSvc := &order.Service{DB: db, Notifier: notifier}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:                  db,
		CartHandler:         &handlers.CartHandler{Svc: cartSvc, JWTSecret: jwtSecret},
		OrderHandler:        &handlers.OrderHandler{Svc: orderSvc, JWTSecret: jwtSecret},
		CategoryHandler:     &handlers.CategoryHandler{DB: db},
		NotificationHandler: &handlers.NotificationHandler{Notifier: notifier, JWTSecret: jwtSecret},
	}
	httpserver.Register(e, &deps)

	addr := ":" + configuration.SERVER_PORT
	if addr == ":" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}
}
