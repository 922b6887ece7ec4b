package models

// Contact is how the airline reaches the booking party
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CreateBookingRequest is the body of POST /api/bookings. The same shape is
// accepted by POST /api/bookings/quote, which prices without persisting.
type CreateBookingRequest struct {
	FlightID              string               `json:"flightId"`
	AccountID             string               `json:"accountId,omitempty"`
	Passengers            []PassengerSelection `json:"passengers"`
	LoyaltyPointsRedeemed int64                `json:"loyaltyPointsRedeemed"`
	Contact               Contact              `json:"contact"`
}

// PassengerFare is one passenger's line of a price breakdown
type PassengerFare struct {
	PassengerIndex int   `json:"passengerIndex"`
	BaseFareCents  Cents `json:"baseFareCents"`
	BaggageCents   Cents `json:"baggageCents"`
	InsuranceCents Cents `json:"insuranceCents"`
	TotalCents     Cents `json:"totalCents"`
}

// PriceBreakdown is the full, reproducible pricing of a booking request.
// Identical input always yields an identical breakdown.
type PriceBreakdown struct {
	Passengers           []PassengerFare `json:"passengers"`
	SubtotalCents        Cents           `json:"subtotalCents"`
	LoyaltyDiscountCents Cents           `json:"loyaltyDiscountCents"`
	GrandTotalCents      Cents           `json:"grandTotalCents"`
}

// BookingConfirmation is returned once a ticket has been persisted.
// GrandTotal is the presentation-boundary decimal rendering of
// PriceBreakdown.GrandTotalCents.
type BookingConfirmation struct {
	TicketID       string          `json:"ticketId"`
	PriceBreakdown *PriceBreakdown `json:"priceBreakdown"`
	GrandTotal     string          `json:"grandTotal"`
}

// FieldError is one itemized eligibility failure
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// EligibilityResult is the outcome of validating a booking request.
// Every check runs, so Errors lists all problems at once.
type EligibilityResult struct {
	Eligible bool         `json:"eligible"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// Add records a failure and marks the result ineligible
func (r *EligibilityResult) Add(field, reason string) {
	r.Eligible = false
	r.Errors = append(r.Errors, FieldError{Field: field, Reason: reason})
}
