package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/ai"
	"github.com/taskhive-dev/taskhive/internal/config"
	"github.com/taskhive-dev/taskhive/internal/handlers"
	"github.com/taskhive-dev/taskhive/internal/mailer"
	"github.com/taskhive-dev/taskhive/internal/router"
	"github.com/taskhive-dev/taskhive/internal/tasks"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := db.ConnectDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.ConfigurePool(cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, time.Duration(cfg.DBConnLifetime)*time.Second); err != nil {
		log.Fatalf("Failed to configure connection pool: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	aiSvc := ai.NewService(cfg)

	if !cfg.AIEnabled() {
		log.Println("AI_API_KEY not set, AI endpoints disabled")
	}

	handlers.Configure(cfg, aiSvc)

	if cfg.QueueEnabled() {
		var mail *mailer.Mailer

		if cfg.MailEnabled() {
			mail = mailer.New(cfg)
		} else {
			log.Println("SMTP_HOST not set, reminder tasks will be skipped")
		}

		if err := tasks.Initialize(cfg, mail); err != nil {
			log.Fatalf("Failed to start task worker: %v", err)
		}
	} else {
		log.Println("REDIS_URL not set, background tasks disabled")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.NewRouter(),
	}

	go func() {
		log.Printf("Listening on %s", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}

	tasks.Shutdown()
	log.Println("Shutdown complete")
}
