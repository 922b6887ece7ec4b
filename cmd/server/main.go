package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aerovia/booking/internal/cache"
	"github.com/aerovia/booking/internal/config"
	"github.com/aerovia/booking/internal/database"
	"github.com/aerovia/booking/internal/fare"
	"github.com/aerovia/booking/internal/handlers"
	"github.com/aerovia/booking/internal/router"
	"github.com/aerovia/booking/internal/service"
	"github.com/aerovia/booking/internal/websocket"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Fare rules: compiled-in schedule unless a rules file is deployed.
	rules := fare.Default()
	if cfg.FareRulesPath != "" {
		var err error
		rules, err = fare.Load(cfg.FareRulesPath)
		if err != nil {
			log.Fatalf("Failed to load fare rules: %v", err)
		}
		log.Printf("Loaded fare rules from %s", cfg.FareRulesPath)
	}

	// One process-wide connection pool, created once and injected.
	log.Println("Connecting to database...")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	repo := database.NewRepository(pool)

	// Flight cache is optional; the service degrades to the database.
	var flightCache cache.FlightCache
	redisCache, err := cache.NewRedisFlightCache(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		log.Printf("Redis unavailable, flight cache disabled: %v", err)
	} else {
		flightCache = redisCache
		defer redisCache.Close()
		log.Printf("Connected to Redis at %s", cfg.RedisAddr)
	}

	// Availability hub for live seat counts
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize services
	bookingService := service.NewBookingService(repo, flightCache, rules, hub)

	// Initialize handlers
	h := handlers.NewHandler(bookingService)

	// Create router
	r := router.NewRouter(h, hub, router.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("API Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
