package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pricewatch/backend/config"
	httpDelivery "github.com/pricewatch/backend/internal/delivery/http"
	"github.com/pricewatch/backend/internal/notifier"
	"github.com/pricewatch/backend/internal/scheduler"
	"github.com/pricewatch/backend/internal/storage"
	"github.com/pricewatch/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PriceWatch Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Store: %s", cfg.Store.DataDir)

	// Open the store and run migrations
	store, err := storage.Open(cfg.Store.DataDir)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	// Initialize usecase layer
	matchingService := usecase.NewMatchingService(store, store, usecase.MatchingConfig{
		EnableDebugLogging: cfg.Server.Environment == "development",
	})
	comparisonService := usecase.NewComparisonService(store)
	tagService := usecase.NewTagService(store)
	scheduleService := usecase.NewScheduleService(store, store)

	// Fire loop + notification consumer
	runner := scheduler.NewRunner(store, store, scheduler.RunnerConfig{
		TickInterval: cfg.Scheduler.TickInterval,
		Location:     cfg.Location(),
	})
	sender := notifier.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	consumer := notifier.New(store, comparisonService, sender, cfg.Scheduler.Competitor)

	log.Printf("Scheduler: tick=%s zone=%s competitor=%s",
		cfg.Scheduler.TickInterval, cfg.Scheduler.Timezone, cfg.Scheduler.Competitor)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(store, matchingService, comparisonService, tagService, scheduleService)
	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := consumer.Run(ctx, runner.Events()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
	log.Printf("Server stopped")
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
