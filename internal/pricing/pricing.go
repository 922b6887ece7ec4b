// Package pricing computes booking totals. It is a pure domain service: no
// I/O, no state, same input always produces the same breakdown. Inputs are
// assumed to have passed eligibility validation; the invariant checks here
// are defensive and should never trigger in correct usage.
package pricing

import (
	"errors"
	"fmt"

	"github.com/aerovia/booking/internal/fare"
	"github.com/aerovia/booking/internal/models"
)

// ErrInvariantViolation is returned when the calculator receives input the
// eligibility validator should have rejected upstream.
var ErrInvariantViolation = errors.New("pricing invariant violation")

// Calculator prices booking requests against a fare rule table.
type Calculator struct {
	rules *fare.Rules
}

// NewCalculator creates a Calculator bound to a fare rule table.
func NewCalculator(rules *fare.Rules) *Calculator {
	return &Calculator{rules: rules}
}

// Compute prices the passenger list against the flight's base fare and
// applies the loyalty discount, clamped so the grand total never goes
// negative. All arithmetic is in integer cents.
func (c *Calculator) Compute(baseFare models.Cents, passengers []models.PassengerSelection, pointsRedeemed int64) (*models.PriceBreakdown, error) {
	if baseFare <= 0 {
		return nil, fmt.Errorf("%w: base fare must be positive, got %d", ErrInvariantViolation, baseFare)
	}
	if len(passengers) == 0 {
		return nil, fmt.Errorf("%w: passenger list is empty", ErrInvariantViolation)
	}
	if pointsRedeemed < 0 {
		return nil, fmt.Errorf("%w: negative loyalty points %d", ErrInvariantViolation, pointsRedeemed)
	}

	breakdown := &models.PriceBreakdown{
		Passengers: make([]models.PassengerFare, 0, len(passengers)),
	}

	var subtotal models.Cents
	for i, p := range passengers {
		line, err := c.pricePassenger(i, baseFare, p)
		if err != nil {
			return nil, err
		}
		breakdown.Passengers = append(breakdown.Passengers, *line)
		subtotal += line.TotalCents
	}
	breakdown.SubtotalCents = subtotal

	discount := models.Cents(pointsRedeemed / c.rules.PointsPerCent)
	if discount > subtotal {
		discount = subtotal
	}
	breakdown.LoyaltyDiscountCents = discount
	breakdown.GrandTotalCents = subtotal - discount

	return breakdown, nil
}

func (c *Calculator) pricePassenger(index int, baseFare models.Cents, p models.PassengerSelection) (*models.PassengerFare, error) {
	var base models.Cents
	if p.AgeCategory == models.AgeCategoryInfant && c.rules.UseFlatInfantFare {
		base = c.rules.InfantFlatFareCents
	} else {
		bp, err := c.rules.RateFor(p.AgeCategory)
		if err != nil {
			return nil, err
		}
		// Basis-point scaling, rounded to the nearest cent.
		base = models.Cents((int64(baseFare)*bp + 5000) / 10000)
	}

	checked, err := c.rules.SurchargeFor(models.BaggageKindChecked, p.CheckedBaggageTier)
	if err != nil {
		return nil, err
	}
	cabin, err := c.rules.SurchargeFor(models.BaggageKindCabin, p.CabinBaggageTier)
	if err != nil {
		return nil, err
	}

	var insurance models.Cents
	if p.Insurance {
		insurance = c.rules.InsuranceFeeCents
	}

	return &models.PassengerFare{
		PassengerIndex: index,
		BaseFareCents:  base,
		BaggageCents:   checked + cabin,
		InsuranceCents: insurance,
		TotalCents:     base + checked + cabin + insurance,
	}, nil
}
