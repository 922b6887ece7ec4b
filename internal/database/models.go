package database

import (
	"time"

	"github.com/aerovia/booking/internal/models"
	"github.com/google/uuid"
)

// Flight represents a flight in the database
type Flight struct {
	ID             uuid.UUID    `json:"id"`
	FlightNumber   string       `json:"flightNumber"`
	Origin         string       `json:"origin"`
	Destination    string       `json:"destination"`
	DepartureTime  time.Time    `json:"departureTime"`
	ArrivalTime    time.Time    `json:"arrivalTime"`
	TotalSeats     int          `json:"totalSeats"`
	AvailableSeats int          `json:"availableSeats"`
	BaseFareCents  models.Cents `json:"baseFareCents"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// LoyaltyAccount represents a customer loyalty account
type LoyaltyAccount struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Points    int64     `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TicketStatus represents the status of a ticket
type TicketStatus string

const (
	TicketStatusConfirmed TicketStatus = "confirmed"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// Ticket is the booking header record. Passenger rows are its children and
// are written in the same transaction.
type Ticket struct {
	ID                   uuid.UUID         `json:"id"`
	FlightID             uuid.UUID         `json:"flightId"`
	AccountID            *uuid.UUID        `json:"accountId,omitempty"`
	ContactEmail         string            `json:"contactEmail"`
	ContactPhone         string            `json:"contactPhone"`
	Status               TicketStatus      `json:"status"`
	SubtotalCents        models.Cents      `json:"subtotalCents"`
	LoyaltyDiscountCents models.Cents      `json:"loyaltyDiscountCents"`
	GrandTotalCents      models.Cents      `json:"grandTotalCents"`
	PointsRedeemed       int64             `json:"pointsRedeemed"`
	CreatedAt            time.Time         `json:"createdAt"`
	Passengers           []TicketPassenger `json:"passengers,omitempty"`
}

// TicketPassenger represents one passenger on a ticket
type TicketPassenger struct {
	ID                 uuid.UUID          `json:"id"`
	TicketID           uuid.UUID          `json:"ticketId"`
	FirstName          string             `json:"firstName"`
	LastName           string             `json:"lastName"`
	DateOfBirth        time.Time          `json:"dateOfBirth"`
	Nationality        string             `json:"nationality"`
	PassportNumber     string             `json:"passportNumber"`
	AgeCategory        models.AgeCategory `json:"ageCategory"`
	CheckedBaggageTier int                `json:"checkedBaggageTier"`
	CabinBaggageTier   int                `json:"cabinBaggageTier"`
	Insurance          bool               `json:"insurance"`
	FareCents          models.Cents       `json:"fareCents"`
	BaggageCents       models.Cents       `json:"baggageCents"`
	InsuranceCents     models.Cents       `json:"insuranceCents"`
}
