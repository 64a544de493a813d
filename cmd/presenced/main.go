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

	"github.com/SherClockHolmes/webpush-go"

	"faculty-presence-backend/config"
	"faculty-presence-backend/internal/api"
	"faculty-presence-backend/internal/broadcast"
	"faculty-presence-backend/internal/db"
	"faculty-presence-backend/internal/feed"
	"faculty-presence-backend/internal/notification"
	"faculty-presence-backend/internal/presence"
	"faculty-presence-backend/internal/schedule"
	"faculty-presence-backend/internal/store"
	"faculty-presence-backend/internal/throttle"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "presence-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Check for VAPID keys
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatalf("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Presence engine: accepted changes fan out to live viewers and to
	// the write-behind history journal.
	hub := broadcast.NewHub(cfg.Broadcast.SubscriberBuffer)
	journal := store.NewJournal(appStore, 256)
	go journal.Run(ctx)

	presenceStore := presence.NewStore(hub, journal)
	logger.Println("presence engine initialized")

	limiter := throttle.NewLimiter(
		time.Duration(cfg.Throttle.WindowSeconds)*time.Second,
		cfg.Throttle.MaxRequests,
	)
	resolver := schedule.NewResolver(appStore)

	// Notification worker pool for update-request pings.
	notifier := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	notifier.Start(ctx)

	// Background observation feeds.
	calendarSvc := feed.NewCalendarService(&cfg.CalendarFeed, presenceStore)
	go calendarSvc.Run(ctx)

	timetableSvc := feed.NewTimetableService(&cfg.TimetableSync, appStore, appStore, presenceStore)
	go timetableSvc.Run(ctx)

	// Initialize router
	handler := api.NewHandler(appStore, presenceStore, hub, limiter, resolver, notifier, &webpushOptions)
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
