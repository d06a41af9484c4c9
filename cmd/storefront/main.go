package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zinchenko-maksym/zinware-backend/internal/auth"
	"github.com/zinchenko-maksym/zinware-backend/internal/cart"
	"github.com/zinchenko-maksym/zinware-backend/internal/catalog"
	"github.com/zinchenko-maksym/zinware-backend/internal/config"
	"github.com/zinchenko-maksym/zinware-backend/internal/db"
	"github.com/zinchenko-maksym/zinware-backend/internal/events"
	httpserver "github.com/zinchenko-maksym/zinware-backend/internal/http"
	"github.com/zinchenko-maksym/zinware-backend/internal/user"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lshortfile)

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	if cfg.DBDSN == "" {
		logger.Fatal("STOREFRONT_DB_DSN not set")
	}

	if err := db.RunMigrations(cfg.DBDSN, logger); err != nil {
		logger.Fatalf("run migrations: %v", err)
	}

	database := db.MustOpen()
	defer database.Close()

	cartRepo := cart.NewRepository(database)
	catalogRepo := catalog.NewRepository(database)
	userRepo := user.NewRepository(database)

	cartService := cart.NewService(cartRepo, catalogRepo)

	hasher := auth.NewBcryptHasher(0)
	signer := auth.NewJWTSigner(cfg.JWTSecret, cfg.TokenTTL)
	authService, err := auth.NewService(userRepo, hasher, signer)
	if err != nil {
		logger.Fatalf("create auth service: %v", err)
	}

	rabbitConn := events.MustDialRabbit()
	defer rabbitConn.Close()

	sequenceRepo := events.NewSequenceRepository(database)
	publisher, err := events.NewRabbitPublisher(rabbitConn, sequenceRepo)
	if err != nil {
		logger.Fatalf("create event publisher: %v", err)
	}

	authHandler := httpserver.NewAuthHandler(authService, publisher, logger)
	cartHandler := httpserver.NewCartHandler(cartService, publisher, logger)
	router := httpserver.NewRouter(authHandler, cartHandler, signer)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("storefront listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		logger.Fatalf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Printf("publisher close error: %v", err)
	}
}
