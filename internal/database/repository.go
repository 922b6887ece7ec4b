package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrSeatConflict       = errors.New("not enough seats available")
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
)

// Repository handles all database operations. A single process-wide pool is
// constructed at startup and injected here, never re-created per call.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// --- Flight Operations ---

// GetUpcomingFlights returns all flights that have not yet departed
func (r *Repository) GetUpcomingFlights(ctx context.Context) ([]Flight, error) {
	query := `
		SELECT id, flight_number, origin, destination, departure_time, arrival_time,
		       total_seats, available_seats, base_fare_cents, created_at, updated_at
		FROM flights
		WHERE departure_time > NOW()
		ORDER BY departure_time ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var flights []Flight
	for rows.Next() {
		var f Flight
		err := rows.Scan(
			&f.ID, &f.FlightNumber, &f.Origin, &f.Destination,
			&f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.AvailableSeats,
			&f.BaseFareCents, &f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		flights = append(flights, f)
	}

	return flights, rows.Err()
}

// GetFlightByID returns a flight by ID
func (r *Repository) GetFlightByID(ctx context.Context, id uuid.UUID) (*Flight, error) {
	query := `
		SELECT id, flight_number, origin, destination, departure_time, arrival_time,
		       total_seats, available_seats, base_fare_cents, created_at, updated_at
		FROM flights
		WHERE id = $1
	`

	var f Flight
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.FlightNumber, &f.Origin, &f.Destination,
		&f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.AvailableSeats,
		&f.BaseFareCents, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}

	return &f, nil
}

// CreateFlight inserts a new flight (admin dashboard)
func (r *Repository) CreateFlight(ctx context.Context, f *Flight) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}

	query := `
		INSERT INTO flights (id, flight_number, origin, destination, departure_time,
		                     arrival_time, total_seats, available_seats, base_fare_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		f.ID, f.FlightNumber, f.Origin, f.Destination, f.DepartureTime,
		f.ArrivalTime, f.TotalSeats, f.AvailableSeats, f.BaseFareCents,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create flight: %w", err)
	}

	return nil
}

// UpdateFlight updates a flight's mutable fields (admin dashboard)
func (r *Repository) UpdateFlight(ctx context.Context, f *Flight) error {
	query := `
		UPDATE flights
		SET flight_number = $1, origin = $2, destination = $3, departure_time = $4,
		    arrival_time = $5, total_seats = $6, available_seats = $7,
		    base_fare_cents = $8, updated_at = NOW()
		WHERE id = $9
	`

	result, err := r.pool.Exec(ctx, query,
		f.FlightNumber, f.Origin, f.Destination, f.DepartureTime,
		f.ArrivalTime, f.TotalSeats, f.AvailableSeats, f.BaseFareCents, f.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update flight: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteFlight removes a flight (admin dashboard)
func (r *Repository) DeleteFlight(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM flights WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Loyalty Operations ---

// GetAccountByID returns a loyalty account by ID
func (r *Repository) GetAccountByID(ctx context.Context, id uuid.UUID) (*LoyaltyAccount, error) {
	query := `
		SELECT id, email, points, created_at, updated_at
		FROM loyalty_accounts
		WHERE id = $1
	`

	var a LoyaltyAccount
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Email, &a.Points, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get loyalty account: %w", err)
	}

	return &a, nil
}

// --- Ticket Operations ---

// CreateTicket persists a ticket with its passenger children as one atomic
// operation. It locks the flight row, re-checks capacity (the validator's
// seat check is advisory only), decrements available seats, and deducts
// redeemed loyalty points, all inside the same transaction. Two concurrent
// bookings can therefore never oversell a flight.
func (r *Repository) CreateTicket(ctx context.Context, t *Ticket, passengers []TicketPassenger) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the flight row so concurrent bookings serialize on the capacity
	// check.
	var available int
	err = tx.QueryRow(ctx, `
		SELECT available_seats FROM flights WHERE id = $1 FOR UPDATE
	`, t.FlightID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock flight: %w", err)
	}

	if available < len(passengers) {
		return ErrSeatConflict
	}

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO tickets (id, flight_id, account_id, contact_email, contact_phone,
		                     status, subtotal_cents, loyalty_discount_cents,
		                     grand_total_cents, points_redeemed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, t.ID, t.FlightID, t.AccountID, t.ContactEmail, t.ContactPhone,
		t.Status, t.SubtotalCents, t.LoyaltyDiscountCents,
		t.GrandTotalCents, t.PointsRedeemed,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	for i := range passengers {
		p := &passengers[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.TicketID = t.ID

		_, err = tx.Exec(ctx, `
			INSERT INTO ticket_passengers (id, ticket_id, first_name, last_name,
			                               date_of_birth, nationality, passport_number,
			                               age_category, checked_baggage_tier,
			                               cabin_baggage_tier, insurance, fare_cents,
			                               baggage_cents, insurance_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, p.ID, p.TicketID, p.FirstName, p.LastName, p.DateOfBirth, p.Nationality,
			p.PassportNumber, p.AgeCategory, p.CheckedBaggageTier, p.CabinBaggageTier,
			p.Insurance, p.FareCents, p.BaggageCents, p.InsuranceCents,
		)
		if err != nil {
			return fmt.Errorf("failed to create ticket passenger: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE flights
		SET available_seats = available_seats - $1, updated_at = NOW()
		WHERE id = $2
	`, len(passengers), t.FlightID)
	if err != nil {
		return fmt.Errorf("failed to decrement available seats: %w", err)
	}

	if t.PointsRedeemed > 0 && t.AccountID != nil {
		result, err := tx.Exec(ctx, `
			UPDATE loyalty_accounts
			SET points = points - $1, updated_at = NOW()
			WHERE id = $2 AND points >= $1
		`, t.PointsRedeemed, *t.AccountID)
		if err != nil {
			return fmt.Errorf("failed to deduct loyalty points: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrInsufficientPoints
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ticket: %w", err)
	}

	t.Passengers = passengers
	return nil
}

// GetTicketByID returns a ticket with its passengers
func (r *Repository) GetTicketByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	query := `
		SELECT id, flight_id, account_id, contact_email, contact_phone, status,
		       subtotal_cents, loyalty_discount_cents, grand_total_cents,
		       points_redeemed, created_at
		FROM tickets
		WHERE id = $1
	`

	var t Ticket
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.FlightID, &t.AccountID, &t.ContactEmail, &t.ContactPhone,
		&t.Status, &t.SubtotalCents, &t.LoyaltyDiscountCents, &t.GrandTotalCents,
		&t.PointsRedeemed, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	passengerQuery := `
		SELECT id, ticket_id, first_name, last_name, date_of_birth, nationality,
		       passport_number, age_category, checked_baggage_tier,
		       cabin_baggage_tier, insurance, fare_cents, baggage_cents,
		       insurance_cents
		FROM ticket_passengers
		WHERE ticket_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, passengerQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticket passengers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p TicketPassenger
		err := rows.Scan(
			&p.ID, &p.TicketID, &p.FirstName, &p.LastName, &p.DateOfBirth,
			&p.Nationality, &p.PassportNumber, &p.AgeCategory,
			&p.CheckedBaggageTier, &p.CabinBaggageTier, &p.Insurance,
			&p.FareCents, &p.BaggageCents, &p.InsuranceCents,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket passenger: %w", err)
		}
		t.Passengers = append(t.Passengers, p)
	}

	return &t, rows.Err()
}
