package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/aerovia/booking/internal/cache"
	"github.com/aerovia/booking/internal/database"
	"github.com/aerovia/booking/internal/eligibility"
	"github.com/aerovia/booking/internal/fare"
	"github.com/aerovia/booking/internal/models"
	"github.com/aerovia/booking/internal/pricing"
)

// ValidationError carries the itemized eligibility failures of a rejected
// booking request. It is recoverable: the caller fixes the request and
// retries. No persistence is attempted when it is returned.
type ValidationError struct {
	Result models.EligibilityResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking request failed %d eligibility check(s)", len(e.Result.Errors))
}

// Store is the persistence collaborator consumed by the service
type Store interface {
	GetUpcomingFlights(ctx context.Context) ([]database.Flight, error)
	GetFlightByID(ctx context.Context, id uuid.UUID) (*database.Flight, error)
	CreateFlight(ctx context.Context, f *database.Flight) error
	UpdateFlight(ctx context.Context, f *database.Flight) error
	DeleteFlight(ctx context.Context, id uuid.UUID) error
	GetAccountByID(ctx context.Context, id uuid.UUID) (*database.LoyaltyAccount, error)
	CreateTicket(ctx context.Context, t *database.Ticket, passengers []database.TicketPassenger) error
	GetTicketByID(ctx context.Context, id uuid.UUID) (*database.Ticket, error)
}

// AvailabilityNotifier pushes seat-availability changes to browsing clients
type AvailabilityNotifier interface {
	NotifyAvailability(flightID uuid.UUID, availableSeats int)
}

// BookingService defines the booking service interface
type BookingService interface {
	GetFlights(ctx context.Context) ([]database.Flight, error)
	GetFlight(ctx context.Context, flightID string) (*database.Flight, error)
	CreateFlight(ctx context.Context, input *models.FlightInput) (*database.Flight, error)
	UpdateFlight(ctx context.Context, flightID string, input *models.FlightInput) (*database.Flight, error)
	DeleteFlight(ctx context.Context, flightID string) error
	GetLoyaltyBalance(ctx context.Context, accountID string) (int64, error)
	CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.BookingConfirmation, error)
	QuoteBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.PriceBreakdown, error)
	GetTicket(ctx context.Context, ticketID string) (*database.Ticket, error)
}

// bookingServiceImpl implements BookingService
type bookingServiceImpl struct {
	store       Store
	flightCache cache.FlightCache
	validator   *eligibility.Validator
	calculator  *pricing.Calculator
	notifier    AvailabilityNotifier
}

// NewBookingService creates a new BookingService. flightCache and notifier
// may be nil; both concerns then degrade gracefully.
func NewBookingService(store Store, flightCache cache.FlightCache, rules *fare.Rules, notifier AvailabilityNotifier) BookingService {
	return &bookingServiceImpl{
		store:       store,
		flightCache: flightCache,
		validator:   eligibility.New(rules),
		calculator:  pricing.NewCalculator(rules),
		notifier:    notifier,
	}
}

func (s *bookingServiceImpl) GetFlights(ctx context.Context) ([]database.Flight, error) {
	return s.store.GetUpcomingFlights(ctx)
}

func (s *bookingServiceImpl) GetFlight(ctx context.Context, flightID string) (*database.Flight, error) {
	id, err := uuid.Parse(flightID)
	if err != nil {
		return nil, database.ErrNotFound
	}

	if s.flightCache != nil {
		if flight, ok := s.flightCache.Get(ctx, id); ok {
			return flight, nil
		}
	}

	flight, err := s.store.GetFlightByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.flightCache != nil {
		_ = s.flightCache.Set(ctx, flight)
	}
	return flight, nil
}

func (s *bookingServiceImpl) CreateFlight(ctx context.Context, input *models.FlightInput) (*database.Flight, error) {
	flight := &database.Flight{
		FlightNumber:   input.FlightNumber,
		Origin:         input.Origin,
		Destination:    input.Destination,
		DepartureTime:  input.DepartureTime,
		ArrivalTime:    input.ArrivalTime,
		TotalSeats:     input.TotalSeats,
		AvailableSeats: input.TotalSeats,
		BaseFareCents:  input.BaseFareCents,
	}
	if err := s.store.CreateFlight(ctx, flight); err != nil {
		return nil, err
	}
	return flight, nil
}

func (s *bookingServiceImpl) UpdateFlight(ctx context.Context, flightID string, input *models.FlightInput) (*database.Flight, error) {
	id, err := uuid.Parse(flightID)
	if err != nil {
		return nil, database.ErrNotFound
	}

	flight, err := s.store.GetFlightByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Keep the booked-seat count intact when total capacity changes.
	booked := flight.TotalSeats - flight.AvailableSeats
	available := input.TotalSeats - booked
	if available < 0 {
		available = 0
	}

	flight.FlightNumber = input.FlightNumber
	flight.Origin = input.Origin
	flight.Destination = input.Destination
	flight.DepartureTime = input.DepartureTime
	flight.ArrivalTime = input.ArrivalTime
	flight.TotalSeats = input.TotalSeats
	flight.AvailableSeats = available
	flight.BaseFareCents = input.BaseFareCents

	if err := s.store.UpdateFlight(ctx, flight); err != nil {
		return nil, err
	}

	s.flightChanged(ctx, flight)
	return flight, nil
}

func (s *bookingServiceImpl) DeleteFlight(ctx context.Context, flightID string) error {
	id, err := uuid.Parse(flightID)
	if err != nil {
		return database.ErrNotFound
	}

	if err := s.store.DeleteFlight(ctx, id); err != nil {
		return err
	}

	if s.flightCache != nil {
		_ = s.flightCache.Invalidate(ctx, id)
	}
	if s.notifier != nil {
		// A removed flight has nothing left to sell.
		s.notifier.NotifyAvailability(id, 0)
	}
	return nil
}

func (s *bookingServiceImpl) GetLoyaltyBalance(ctx context.Context, accountID string) (int64, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return 0, database.ErrNotFound
	}

	account, err := s.store.GetAccountByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return account.Points, nil
}

func (s *bookingServiceImpl) GetTicket(ctx context.Context, ticketID string) (*database.Ticket, error) {
	id, err := uuid.Parse(ticketID)
	if err != nil {
		return nil, database.ErrNotFound
	}
	return s.store.GetTicketByID(ctx, id)
}

// QuoteBooking validates and prices a request without persisting anything
func (s *bookingServiceImpl) QuoteBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.PriceBreakdown, error) {
	_, _, breakdown, err := s.validateAndPrice(ctx, req)
	if err != nil {
		return nil, err
	}
	return breakdown, nil
}

// CreateBooking runs the full orchestration: eligibility gate, price
// computation, then one atomic persist. The store's transactional capacity
// check is authoritative; if it reports a seat conflict the request is
// re-validated against fresh flight state and the commit retried exactly
// once before the conflict is surfaced.
func (s *bookingServiceImpl) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.BookingConfirmation, error) {
	const commitAttempts = 2

	var ticket *database.Ticket
	var breakdown *models.PriceBreakdown

	for attempt := 1; ; attempt++ {
		flight, accountID, bd, err := s.validateAndPrice(ctx, req)
		if err != nil {
			return nil, err
		}

		ticket = &database.Ticket{
			FlightID:             flight.ID,
			AccountID:            accountID,
			ContactEmail:         req.Contact.Email,
			ContactPhone:         req.Contact.Phone,
			Status:               database.TicketStatusConfirmed,
			SubtotalCents:        bd.SubtotalCents,
			LoyaltyDiscountCents: bd.LoyaltyDiscountCents,
			GrandTotalCents:      bd.GrandTotalCents,
			PointsRedeemed:       req.LoyaltyPointsRedeemed,
		}

		err = s.store.CreateTicket(ctx, ticket, buildTicketPassengers(req.Passengers, bd))
		if err == nil {
			breakdown = bd
			break
		}
		if errors.Is(err, database.ErrSeatConflict) && attempt < commitAttempts {
			continue
		}
		if errors.Is(err, database.ErrInsufficientPoints) {
			var result models.EligibilityResult
			result.Add("loyaltyPointsRedeemed", "insufficient loyalty points")
			return nil, &ValidationError{Result: result}
		}
		return nil, err
	}

	if flight, err := s.refreshFlight(ctx, ticket.FlightID); err == nil && s.notifier != nil {
		s.notifier.NotifyAvailability(flight.ID, flight.AvailableSeats)
	}

	return &models.BookingConfirmation{
		TicketID:       ticket.ID.String(),
		PriceBreakdown: breakdown,
		GrandTotal:     breakdown.GrandTotalCents.Dollars(),
	}, nil
}

// validateAndPrice is the shared gate+compute path for quotes and bookings.
func (s *bookingServiceImpl) validateAndPrice(ctx context.Context, req *models.CreateBookingRequest) (*database.Flight, *uuid.UUID, *models.PriceBreakdown, error) {
	flightID, err := uuid.Parse(req.FlightID)
	if err != nil {
		var result models.EligibilityResult
		result.Add("flightId", "invalid flight id")
		return nil, nil, nil, &ValidationError{Result: result}
	}

	flight, err := s.store.GetFlightByID(ctx, flightID)
	if err != nil {
		return nil, nil, nil, err
	}

	accountID, points, err := s.lookupPoints(ctx, req)
	if err != nil {
		return nil, nil, nil, err
	}

	result := s.validator.Validate(req, flight.AvailableSeats, flight.DepartureTime, points)
	if !result.Eligible {
		return nil, nil, nil, &ValidationError{Result: result}
	}

	breakdown, err := s.calculator.Compute(flight.BaseFareCents, req.Passengers, req.LoyaltyPointsRedeemed)
	if err != nil {
		var configErr *fare.ConfigError
		if errors.As(err, &configErr) {
			// Deployment bug, not user error. Halt this request and shout.
			log.Printf("FARE CONFIGURATION ERROR: %v", configErr)
		}
		return nil, nil, nil, err
	}

	return flight, accountID, breakdown, nil
}

func (s *bookingServiceImpl) lookupPoints(ctx context.Context, req *models.CreateBookingRequest) (*uuid.UUID, int64, error) {
	if req.AccountID == "" {
		if req.LoyaltyPointsRedeemed > 0 {
			var result models.EligibilityResult
			result.Add("accountId", "required to redeem loyalty points")
			return nil, 0, &ValidationError{Result: result}
		}
		return nil, 0, nil
	}

	id, err := uuid.Parse(req.AccountID)
	if err != nil {
		var result models.EligibilityResult
		result.Add("accountId", "invalid account id")
		return nil, 0, &ValidationError{Result: result}
	}

	account, err := s.store.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			var result models.EligibilityResult
			result.Add("accountId", "unknown account")
			return nil, 0, &ValidationError{Result: result}
		}
		return nil, 0, err
	}

	return &id, account.Points, nil
}

func (s *bookingServiceImpl) refreshFlight(ctx context.Context, id uuid.UUID) (*database.Flight, error) {
	if s.flightCache != nil {
		_ = s.flightCache.Invalidate(ctx, id)
	}
	return s.store.GetFlightByID(ctx, id)
}

func (s *bookingServiceImpl) flightChanged(ctx context.Context, flight *database.Flight) {
	if s.flightCache != nil {
		_ = s.flightCache.Invalidate(ctx, flight.ID)
	}
	if s.notifier != nil {
		s.notifier.NotifyAvailability(flight.ID, flight.AvailableSeats)
	}
}

func buildTicketPassengers(passengers []models.PassengerSelection, bd *models.PriceBreakdown) []database.TicketPassenger {
	rows := make([]database.TicketPassenger, 0, len(passengers))
	for i, p := range passengers {
		line := bd.Passengers[i]
		rows = append(rows, database.TicketPassenger{
			FirstName:          p.FirstName,
			LastName:           p.LastName,
			DateOfBirth:        p.DateOfBirth,
			Nationality:        p.Nationality,
			PassportNumber:     p.PassportNumber,
			AgeCategory:        p.AgeCategory,
			CheckedBaggageTier: p.CheckedBaggageTier,
			CabinBaggageTier:   p.CabinBaggageTier,
			Insurance:          p.Insurance,
			FareCents:          line.BaseFareCents,
			BaggageCents:       line.BaggageCents,
			InsuranceCents:     line.InsuranceCents,
		})
	}
	return rows
}
