package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"zapateria-storefront/internal/config"
	"zapateria-storefront/internal/db"
	"zapateria-storefront/internal/httpserver"
	paymentrepo "zapateria-storefront/internal/repository/payment"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[paymentsd] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	repo := paymentrepo.NewPostgres(dbpool)
	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, repo)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting payment api on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
