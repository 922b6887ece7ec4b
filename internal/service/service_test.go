package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aerovia/booking/internal/database"
	"github.com/aerovia/booking/internal/fare"
	"github.com/aerovia/booking/internal/models"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetUpcomingFlights(ctx context.Context) ([]database.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.Flight), args.Error(1)
}

func (m *MockStore) GetFlightByID(ctx context.Context, id uuid.UUID) (*database.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Flight), args.Error(1)
}

func (m *MockStore) CreateFlight(ctx context.Context, f *database.Flight) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockStore) UpdateFlight(ctx context.Context, f *database.Flight) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockStore) DeleteFlight(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) GetAccountByID(ctx context.Context, id uuid.UUID) (*database.LoyaltyAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.LoyaltyAccount), args.Error(1)
}

func (m *MockStore) CreateTicket(ctx context.Context, t *database.Ticket, passengers []database.TicketPassenger) error {
	args := m.Called(ctx, t, passengers)
	if args.Error(0) == nil && t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockStore) GetTicketByID(ctx context.Context, id uuid.UUID) (*database.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Ticket), args.Error(1)
}

// MockFlightCache is a mock implementation of cache.FlightCache
type MockFlightCache struct {
	mock.Mock
}

func (m *MockFlightCache) Get(ctx context.Context, id uuid.UUID) (*database.Flight, bool) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*database.Flight), args.Bool(1)
}

func (m *MockFlightCache) Set(ctx context.Context, flight *database.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFlightCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockNotifier is a mock implementation of AvailabilityNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyAvailability(flightID uuid.UUID, availableSeats int) {
	m.Called(flightID, availableSeats)
}

var testDeparture = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func testFlight(available int) *database.Flight {
	return &database.Flight{
		ID:             uuid.MustParse("5f6a1f2e-0000-0000-0000-000000000001"),
		FlightNumber:   "AV101",
		Origin:         "Tel Aviv (TLV)",
		Destination:    "London (LHR)",
		DepartureTime:  testDeparture,
		ArrivalTime:    testDeparture.Add(5 * time.Hour),
		TotalSeats:     180,
		AvailableSeats: available,
		BaseFareCents:  50000,
	}
}

func testBookingRequest() *models.CreateBookingRequest {
	return &models.CreateBookingRequest{
		FlightID: "5f6a1f2e-0000-0000-0000-000000000001",
		Passengers: []models.PassengerSelection{
			{
				FirstName:             "Dana",
				LastName:              "Levy",
				DateOfBirth:           time.Date(1990, 3, 12, 0, 0, 0, 0, time.UTC),
				Nationality:           "US",
				PassportNumber:        "X1234567",
				PassportExpiry:        testDeparture.AddDate(2, 0, 0),
				AgeCategory:           models.AgeCategoryAdult,
				EmergencyContactName:  "Noa Levy",
				EmergencyContactPhone: "+1-555-0100",
			},
		},
		Contact: models.Contact{
			Email: "dana@example.com",
			Phone: "+1-555-0101",
		},
	}
}

func newTestService(store *MockStore) BookingService {
	return NewBookingService(store, nil, fare.Default(), nil)
}

func TestCreateBooking_Success(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store)

	store.On("GetFlightByID", mock.Anything, mock.Anything).Return(testFlight(100), nil)
	store.On("CreateTicket", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	confirmation, err := svc.CreateBooking(context.Background(), testBookingRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, confirmation.TicketID)
	assert.Equal(t, models.Cents(50000), confirmation.PriceBreakdown.GrandTotalCents)
	assert.Equal(t, "500.00", confirmation.GrandTotal)

	store.AssertNumberOfCalls(t, "CreateTicket", 1)
}

func TestCreateBooking_ValidationFailureDoesNotPersist(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store)

	// One seat left, one passenger requested, but a required field is blank.
	store.On("GetFlightByID", mock.Anything, mock.Anything).Return(testFlight(100), nil)

	req := testBookingRequest()
	req.Passengers[0].PassportNumber = ""

	_, err := svc.CreateBooking(context.Background(), req)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Result.Errors)

	store.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_SeatConflictRetriesOnce(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store)

	store.On("GetFlightByID", mock.Anything, mock.Anything).Return(testFlight(100), nil)
	store.On("CreateTicket", mock.Anything, mock.Anything, mock.Anything).Return(database.ErrSeatConflict).Once()
	store.On("CreateTicket", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	confirmation, err := svc.CreateBooking(context.Background(), testBookingRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, confirmation.TicketID)

	store.AssertNumberOfCalls(t, "CreateTicket", 2)
}

func TestCreateBooking_SeatConflictTwiceSurfaces(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store)

	store.On("GetFlightByID", mock.Anything, mock.Anything).Return(testFlight(100), nil)
	store.On("CreateTicket", mock.Anything, mock.Anything, mock.Anything).Return(database.ErrSeatConflict)

	_, err := svc.CreateBooking(context.Background(), testBookingRequest())
	assert.ErrorIs(t, err, database.ErrSeatConflict)

	// Exactly one retry, never more.
	store.AssertNumberOfCalls(t, "CreateTicket", 2)
}

func TestCreateBooking_RevalidatesAfterConflict(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store)

	// First validation sees seats; after the conflict the fresh flight has
	// none left, so the retry fails validation instead of re-committing.
	store.On("GetFlightByID", mock.Anything, mock.Anything).Return(testFlight(1), nil).Once()
	store.On("GetFlightByID", mock.Anything, mock.Anything).Return(testFlight(0), nil).Once()
	store.On("CreateTicket", mock.Anything, mock.Anything, mock.Anything).Return(database.ErrSeatConflict).Once()

	_, err := svc.CreateBooking(context.Background(), testBookingRequest())

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	store.AssertNumberOfCalls(t, "CreateTicket", 1)
}

func TestCreateBooking_UnknownFlight(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store)

	store.On("GetFlightByID", mock.Anything, mock.Anything).Return(nil, database.ErrNotFound)

	_, err := svc.CreateBooking(context.Background(), testBookingRequest())
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCreateBooking_StorageErrorSurfaces(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store)

	storageErr := errors.New("connection reset")
	store.On("GetFlightByID", mock.Anything, mock.Anything).Return(testFlight(100), nil)
	store.On("CreateTicket", mock.Anything, mock.Anything, mock.Anything).Return(storageErr)

	_, err := svc.CreateBooking(context.Background(), testBookingRequest())
	assert.ErrorIs(t, err, storageErr)

	// A generic storage failure is not retried.
	store.AssertNumberOfCalls(t, "CreateTicket", 1)
}

func TestCreateBooking_LoyaltyRedemption(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store)

	accountID := uuid.New()
	store.On("GetFlightByID", mock.Anything, mock.Anything).Return(testFlight(100), nil)
	store.On("GetAccountByID", mock.Anything, accountID).Return(&database.LoyaltyAccount{
		ID:     accountID,
		Points: 5000,
	}, nil)
	store.On("CreateTicket", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := testBookingRequest()
	req.AccountID = accountID.String()
	req.LoyaltyPointsRedeemed = 2000

	confirmation, err := svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.Cents(2000), confirmation.PriceBreakdown.LoyaltyDiscountCents)
	assert.Equal(t, models.Cents(48000), confirmation.PriceBreakdown.GrandTotalCents)
}

func TestCreateBooking_PointsWithoutAccount(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store)

	store.On("GetFlightByID", mock.Anything, mock.Anything).Return(testFlight(100), nil)

	req := testBookingRequest()
	req.LoyaltyPointsRedeemed = 100

	_, err := svc.CreateBooking(context.Background(), req)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "accountId", validationErr.Result.Errors[0].Field)
}

func TestQuoteBooking_DoesNotPersist(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store)

	store.On("GetFlightByID", mock.Anything, mock.Anything).Return(testFlight(100), nil)

	breakdown, err := svc.QuoteBooking(context.Background(), testBookingRequest())
	require.NoError(t, err)

	assert.Equal(t, models.Cents(50000), breakdown.GrandTotalCents)
	store.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetFlight_InvalidIDIsNotFound(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store)

	_, err := svc.GetFlight(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestUpdateFlight_PreservesBookedSeats(t *testing.T) {
	store := new(MockStore)
	svc := newTestService(store)

	flight := testFlight(100) // 80 seats already booked out of 180
	store.On("GetFlightByID", mock.Anything, flight.ID).Return(flight, nil)
	store.On("UpdateFlight", mock.Anything, mock.Anything).Return(nil)

	updated, err := svc.UpdateFlight(context.Background(), flight.ID.String(), &models.FlightInput{
		FlightNumber:  "AV101",
		Origin:        flight.Origin,
		Destination:   flight.Destination,
		DepartureTime: flight.DepartureTime,
		ArrivalTime:   flight.ArrivalTime,
		TotalSeats:    200,
		BaseFareCents: 52000,
	})
	require.NoError(t, err)

	assert.Equal(t, 200, updated.TotalSeats)
	assert.Equal(t, 120, updated.AvailableSeats)
}

func TestGetFlight_CacheHitSkipsStore(t *testing.T) {
	store := new(MockStore)
	flightCache := new(MockFlightCache)
	svc := NewBookingService(store, flightCache, fare.Default(), nil)

	cached := testFlight(42)
	flightCache.On("Get", mock.Anything, cached.ID).Return(cached, true)

	flight, err := svc.GetFlight(context.Background(), cached.ID.String())
	require.NoError(t, err)

	assert.Equal(t, 42, flight.AvailableSeats)
	store.AssertNotCalled(t, "GetFlightByID", mock.Anything, mock.Anything)
}

func TestGetFlight_CacheMissFallsThroughToStore(t *testing.T) {
	store := new(MockStore)
	flightCache := new(MockFlightCache)
	svc := NewBookingService(store, flightCache, fare.Default(), nil)

	flight := testFlight(100)
	flightCache.On("Get", mock.Anything, flight.ID).Return(nil, false)
	store.On("GetFlightByID", mock.Anything, flight.ID).Return(flight, nil)
	// A broken cache write must not fail the read.
	flightCache.On("Set", mock.Anything, flight).Return(errors.New("redis: connection refused"))

	got, err := svc.GetFlight(context.Background(), flight.ID.String())
	require.NoError(t, err)

	assert.Equal(t, flight.ID, got.ID)
	store.AssertCalled(t, "GetFlightByID", mock.Anything, flight.ID)
	flightCache.AssertCalled(t, "Set", mock.Anything, flight)
}

func TestUpdateFlight_InvalidatesCacheAndBroadcasts(t *testing.T) {
	store := new(MockStore)
	flightCache := new(MockFlightCache)
	notifier := new(MockNotifier)
	svc := NewBookingService(store, flightCache, fare.Default(), notifier)

	flight := testFlight(100) // 80 seats already booked out of 180
	store.On("GetFlightByID", mock.Anything, flight.ID).Return(flight, nil)
	store.On("UpdateFlight", mock.Anything, mock.Anything).Return(nil)
	flightCache.On("Invalidate", mock.Anything, flight.ID).Return(nil)
	notifier.On("NotifyAvailability", flight.ID, 120).Return()

	_, err := svc.UpdateFlight(context.Background(), flight.ID.String(), &models.FlightInput{
		FlightNumber:  "AV101",
		Origin:        flight.Origin,
		Destination:   flight.Destination,
		DepartureTime: flight.DepartureTime,
		ArrivalTime:   flight.ArrivalTime,
		TotalSeats:    200,
		BaseFareCents: 52000,
	})
	require.NoError(t, err)

	flightCache.AssertCalled(t, "Invalidate", mock.Anything, flight.ID)
	notifier.AssertCalled(t, "NotifyAvailability", flight.ID, 120)
}

func TestDeleteFlight_InvalidatesCacheAndBroadcasts(t *testing.T) {
	store := new(MockStore)
	flightCache := new(MockFlightCache)
	notifier := new(MockNotifier)
	svc := NewBookingService(store, flightCache, fare.Default(), notifier)

	id := testFlight(100).ID
	store.On("DeleteFlight", mock.Anything, id).Return(nil)
	flightCache.On("Invalidate", mock.Anything, id).Return(nil)
	notifier.On("NotifyAvailability", id, 0).Return()

	require.NoError(t, svc.DeleteFlight(context.Background(), id.String()))

	flightCache.AssertCalled(t, "Invalidate", mock.Anything, id)
	notifier.AssertCalled(t, "NotifyAvailability", id, 0)
}

func TestCreateBooking_InvalidatesCacheAndBroadcastsFreshCount(t *testing.T) {
	store := new(MockStore)
	flightCache := new(MockFlightCache)
	notifier := new(MockNotifier)
	svc := NewBookingService(store, flightCache, fare.Default(), notifier)

	flight := testFlight(100)
	store.On("GetFlightByID", mock.Anything, flight.ID).Return(flight, nil).Once()
	store.On("CreateTicket", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	// The post-commit re-read sees the decremented count; that count, not
	// the stale pre-commit one, is what gets broadcast.
	store.On("GetFlightByID", mock.Anything, flight.ID).Return(testFlight(99), nil).Once()
	flightCache.On("Invalidate", mock.Anything, flight.ID).Return(nil)
	notifier.On("NotifyAvailability", flight.ID, 99).Return()

	_, err := svc.CreateBooking(context.Background(), testBookingRequest())
	require.NoError(t, err)

	flightCache.AssertCalled(t, "Invalidate", mock.Anything, flight.ID)
	notifier.AssertCalled(t, "NotifyAvailability", flight.ID, 99)
}

func TestCreateBooking_FailedBookingDoesNotBroadcast(t *testing.T) {
	store := new(MockStore)
	flightCache := new(MockFlightCache)
	notifier := new(MockNotifier)
	svc := NewBookingService(store, flightCache, fare.Default(), notifier)

	store.On("GetFlightByID", mock.Anything, mock.Anything).Return(testFlight(100), nil)
	store.On("CreateTicket", mock.Anything, mock.Anything, mock.Anything).Return(database.ErrSeatConflict)

	_, err := svc.CreateBooking(context.Background(), testBookingRequest())
	assert.ErrorIs(t, err, database.ErrSeatConflict)

	notifier.AssertNotCalled(t, "NotifyAvailability", mock.Anything, mock.Anything)
	flightCache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}
