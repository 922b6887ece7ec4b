package router

import (
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/aerovia/booking/internal/handlers"
	"github.com/aerovia/booking/internal/websocket"
)

// RateLimitConfig controls the per-client request rate limiter
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimitConfig returns the default per-client limits
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
	}
}

// NewRouter creates and configures the HTTP router
func NewRouter(h *handlers.Handler, hub *websocket.Hub, limits RateLimitConfig) *mux.Router {
	r := mux.NewRouter()

	r.Use(corsMiddleware)
	r.Use(newClientLimiter(limits).middleware)

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	// Flights (admin mutations share the collection path)
	api.HandleFunc("/flights", h.GetFlights).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights", h.CreateFlight).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights/{id}", h.UpdateFlight).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/flights/{id}", h.DeleteFlight).Methods(http.MethodDelete, http.MethodOptions)

	// Bookings
	api.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/bookings/quote", h.QuoteBooking).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/bookings/{id}", h.GetTicket).Methods(http.MethodGet, http.MethodOptions)

	// Loyalty
	api.HandleFunc("/accounts/{id}/loyalty", h.GetLoyaltyBalance).Methods(http.MethodGet, http.MethodOptions)

	// WebSocket for live seat-availability updates
	if hub != nil {
		api.HandleFunc("/flights/{flightId}/ws", websocket.HandleWebSocket(hub))
	}

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientLimiter keeps one token bucket per client IP
type clientLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	limits   RateLimitConfig
}

func newClientLimiter(limits RateLimitConfig) *clientLimiter {
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		limits:   limits,
	}
}

func (c *clientLimiter) limiterFor(clientIP string) *rate.Limiter {
	c.mu.RLock()
	limiter, exists := c.limiters[clientIP]
	c.mu.RUnlock()

	if exists {
		return limiter
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if limiter, exists = c.limiters[clientIP]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(c.limits.RequestsPerSecond), c.limits.BurstSize)
	c.limiters[clientIP] = limiter
	return limiter
}

func (c *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			clientIP = r.RemoteAddr
		}

		if !c.limiterFor(clientIP).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
