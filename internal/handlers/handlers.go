package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/aerovia/booking/internal/database"
	"github.com/aerovia/booking/internal/fare"
	"github.com/aerovia/booking/internal/models"
	"github.com/aerovia/booking/internal/service"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	bookingService service.BookingService
}

// NewHandler creates a new Handler instance
func NewHandler(bookingService service.BookingService) *Handler {
	return &Handler{
		bookingService: bookingService,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError translates the service error taxonomy into boundary
// responses. Only this layer does that translation; the calculator and
// validator never catch each other's errors.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	var configErr *fare.ConfigError

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"errors": validationErr.Result.Errors,
		})
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, database.ErrSeatConflict):
		// Distinct from a generic storage failure so the client can
		// re-validate and retry.
		respondError(w, http.StatusConflict, "Seat availability changed, please retry")
	case errors.As(err, &configErr):
		respondError(w, http.StatusInternalServerError, "Fare configuration error")
	default:
		respondError(w, http.StatusInternalServerError, "Storage failure")
	}
}

// GetFlights handles GET /api/flights
func (h *Handler) GetFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.bookingService.GetFlights(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flights)
}

// GetFlight handles GET /api/flights/{id}
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	flightID := mux.Vars(r)["id"]
	flight, err := h.bookingService.GetFlight(r.Context(), flightID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// CreateFlight handles POST /api/flights (admin dashboard)
func (h *Handler) CreateFlight(w http.ResponseWriter, r *http.Request) {
	var input models.FlightInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if input.FlightNumber == "" {
		respondError(w, http.StatusBadRequest, "Flight number is required")
		return
	}
	if input.TotalSeats <= 0 {
		respondError(w, http.StatusBadRequest, "Total seats must be positive")
		return
	}
	if input.BaseFareCents <= 0 {
		respondError(w, http.StatusBadRequest, "Base fare must be positive")
		return
	}

	flight, err := h.bookingService.CreateFlight(r.Context(), &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, flight)
}

// UpdateFlight handles PUT /api/flights/{id} (admin dashboard)
func (h *Handler) UpdateFlight(w http.ResponseWriter, r *http.Request) {
	flightID := mux.Vars(r)["id"]

	var input models.FlightInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	flight, err := h.bookingService.UpdateFlight(r.Context(), flightID, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// DeleteFlight handles DELETE /api/flights/{id} (admin dashboard)
func (h *Handler) DeleteFlight(w http.ResponseWriter, r *http.Request) {
	flightID := mux.Vars(r)["id"]

	if err := h.bookingService.DeleteFlight(r.Context(), flightID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Flight deleted"})
}

// CreateBooking handles POST /api/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	confirmation, err := h.bookingService.CreateBooking(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, confirmation)
}

// QuoteBooking handles POST /api/bookings/quote
func (h *Handler) QuoteBooking(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	breakdown, err := h.bookingService.QuoteBooking(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"priceBreakdown": breakdown,
		"grandTotal":     breakdown.GrandTotalCents.Dollars(),
	})
}

// GetTicket handles GET /api/bookings/{id}
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := mux.Vars(r)["id"]

	ticket, err := h.bookingService.GetTicket(r.Context(), ticketID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

// GetLoyaltyBalance handles GET /api/accounts/{id}/loyalty
func (h *Handler) GetLoyaltyBalance(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["id"]

	points, err := h.bookingService.GetLoyaltyBalance(r.Context(), accountID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"points": points})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
