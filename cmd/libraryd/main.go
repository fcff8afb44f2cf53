package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Pam-anne/Reader-Aee/internal/auth"
	"github.com/Pam-anne/Reader-Aee/internal/catalog"
	"github.com/Pam-anne/Reader-Aee/internal/config"
	"github.com/Pam-anne/Reader-Aee/internal/db"
	"github.com/Pam-anne/Reader-Aee/internal/events"
	"github.com/Pam-anne/Reader-Aee/internal/httpapi"
	"github.com/Pam-anne/Reader-Aee/internal/ledger"
	"github.com/Pam-anne/Reader-Aee/internal/metrics"
	"github.com/Pam-anne/Reader-Aee/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger(cfg.ServiceName, cfg.LogLevel)
	defer log.Sync()

	log.Info("Library service starting")

	log.Info("Connecting to database...")
	database, err := db.Connect(cfg.PGDSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	log.Info("Running database migrations...")
	if err := db.RunMigrations(database); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := db.SeedDemoData(database); err != nil {
			log.Fatal("Failed to seed demo data", zap.Error(err))
		}
		log.Info("Demo data seeded")
	}

	ledgerSvc := ledger.New(database, ledger.Config{
		MaxActiveRequests: cfg.MaxActiveRequests,
		MaxOpenLoans:      cfg.MaxOpenLoans,
		LoanPeriod:        time.Duration(cfg.LoanPeriodDays) * 24 * time.Hour,
	}, log)
	catalogSvc := catalog.New(database, log)
	authSvc := auth.NewService(database, cfg.JWTSecret, time.Duration(cfg.TokenTTLMin)*time.Minute, log)
	m := metrics.New()

	// The broker is a notification channel, not the record; run without it
	// when it is unreachable.
	var publisher httpapi.EventPublisher
	log.Info("Connecting to RabbitMQ")
	if p, err := events.NewPublisher(cfg.RabbitMQURL, log); err != nil {
		log.Warn("Event broker unavailable, events disabled", zap.Error(err))
	} else {
		publisher = p
		defer p.Close()
	}

	server := httpapi.NewServer(ledgerSvc, catalogSvc, authSvc, publisher, m, database, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      server.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped")
}
