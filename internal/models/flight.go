package models

import "time"

// FlightInput is the admin dashboard payload for creating or updating a
// flight.
type FlightInput struct {
	FlightNumber  string    `json:"flightNumber"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departureTime"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	TotalSeats    int       `json:"totalSeats"`
	BaseFareCents Cents     `json:"baseFareCents"`
}
