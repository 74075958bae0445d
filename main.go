package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sdo-api/api"
	"sdo-api/config"
	"sdo-api/services"
	"sdo-api/storage"
)

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}

	logging, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := storage.Open(cfg, logging)
	if err != nil {
		logging.Fatal("Failed to open document store", zap.Error(err))
	}
	defer store.Close()
	logging.Info("Document store ready", zap.String("driver", cfg.DBDriver))

	router := api.NewRouter(api.Deps{
		Catalog:  services.NewCatalogService(cfg, store, logging),
		Resolver: services.NewPDFResolver(cfg, logging),
		Logger:   logging,
		Ready:    store.Ping,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// PDF-Abrufe können bis zu PDF_FETCH_TIMEOUT pro Quelle dauern.
		WriteTimeout: 2*cfg.PDFFetchTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", zap.Error(err))
	}
}
