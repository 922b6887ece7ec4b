package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/aerovia/booking/internal/database"
	"github.com/aerovia/booking/internal/models"
)

// MockBookingService is a mock implementation of service.BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) GetFlights(ctx context.Context) ([]database.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.Flight), args.Error(1)
}

func (m *MockBookingService) GetFlight(ctx context.Context, flightID string) (*database.Flight, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Flight), args.Error(1)
}

func (m *MockBookingService) CreateFlight(ctx context.Context, input *models.FlightInput) (*database.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Flight), args.Error(1)
}

func (m *MockBookingService) UpdateFlight(ctx context.Context, flightID string, input *models.FlightInput) (*database.Flight, error) {
	args := m.Called(ctx, flightID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Flight), args.Error(1)
}

func (m *MockBookingService) DeleteFlight(ctx context.Context, flightID string) error {
	args := m.Called(ctx, flightID)
	return args.Error(0)
}

func (m *MockBookingService) GetLoyaltyBalance(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.BookingConfirmation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingConfirmation), args.Error(1)
}

func (m *MockBookingService) QuoteBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.PriceBreakdown, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PriceBreakdown), args.Error(1)
}

func (m *MockBookingService) GetTicket(ctx context.Context, ticketID string) (*database.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Ticket), args.Error(1)
}
