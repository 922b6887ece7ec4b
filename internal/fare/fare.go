// Package fare holds the pricing policy as swappable configuration: discount
// factors per age category, baggage surcharge tiers, the insurance fee and
// the loyalty redemption rate. Calculation logic lives in pricing; this
// package only answers lookups, and a lookup miss is a configuration bug.
package fare

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aerovia/booking/internal/models"
)

// ConfigError reports a fare-table lookup miss. It indicates a deployment or
// configuration bug, never user error, so it maps to a 500 at the boundary
// and must never be substituted with a default price.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("fare rules have no entry for %q", e.Key)
}

// Rules is the fare rule table. Immutable once constructed; money values are
// integer cents, discount factors are basis points (10000 = full fare).
type Rules struct {
	// DiscountBasisPoints maps each age category to the fraction of the base
	// fare it pays, in basis points.
	DiscountBasisPoints map[models.AgeCategory]int64 `json:"discountBasisPoints"`

	// UseFlatInfantFare switches infants from a discount factor to the flat
	// InfantFlatFareCents amount. The switch is explicit so the policy choice
	// is visible in the rules file rather than implied by a zero factor.
	UseFlatInfantFare   bool         `json:"useFlatInfantFare"`
	InfantFlatFareCents models.Cents `json:"infantFlatFareCents"`

	// Surcharge tables indexed by tier. Tier 0 is always free.
	CheckedBaggageCents []models.Cents `json:"checkedBaggageCents"`
	CabinBaggageCents   []models.Cents `json:"cabinBaggageCents"`

	InsuranceFeeCents models.Cents `json:"insuranceFeeCents"`

	// PointsPerCent is how many loyalty points buy one cent of discount.
	PointsPerCent int64 `json:"pointsPerCent"`
}

// Default returns the compiled-in fare schedule: adults pay full fare,
// children 75%, infants a flat $50.00; checked baggage tiers $0/$30/$55/$75,
// cabin tiers $0/$15/$25; insurance $25.00 per passenger; 100 points = $1.00.
func Default() *Rules {
	return &Rules{
		DiscountBasisPoints: map[models.AgeCategory]int64{
			models.AgeCategoryAdult:  10000,
			models.AgeCategoryChild:  7500,
			models.AgeCategoryInfant: 8000,
		},
		UseFlatInfantFare:   true,
		InfantFlatFareCents: 5000,
		CheckedBaggageCents: []models.Cents{0, 3000, 5500, 7500},
		CabinBaggageCents:   []models.Cents{0, 1500, 2500},
		InsuranceFeeCents:   2500,
		PointsPerCent:       1,
	}
}

// Load reads a fare rules JSON file, validates it, and returns it. An
// unreadable or incomplete file is fatal: the service must not start with a
// partial fare table.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fare rules: %w", err)
	}

	var r Rules
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse fare rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fare rules in %s: %w", path, err)
	}
	return &r, nil
}

// Validate checks that the table covers the closed enumerations it must
// answer for.
func (r *Rules) Validate() error {
	for _, cat := range []models.AgeCategory{
		models.AgeCategoryAdult, models.AgeCategoryChild, models.AgeCategoryInfant,
	} {
		bp, ok := r.DiscountBasisPoints[cat]
		if !ok {
			return fmt.Errorf("missing discount factor for category %q", cat)
		}
		if bp < 0 || bp > 10000 {
			return fmt.Errorf("discount factor for %q out of range: %d", cat, bp)
		}
	}
	if r.UseFlatInfantFare && r.InfantFlatFareCents < 0 {
		return fmt.Errorf("negative infant flat fare: %d", r.InfantFlatFareCents)
	}
	if len(r.CheckedBaggageCents) == 0 || len(r.CabinBaggageCents) == 0 {
		return fmt.Errorf("baggage surcharge tables must not be empty")
	}
	if r.InsuranceFeeCents < 0 {
		return fmt.Errorf("negative insurance fee: %d", r.InsuranceFeeCents)
	}
	if r.PointsPerCent <= 0 {
		return fmt.Errorf("points-per-cent rate must be positive, got %d", r.PointsPerCent)
	}
	return nil
}

// RateFor returns the discount factor for an age category in basis points.
func (r *Rules) RateFor(category models.AgeCategory) (int64, error) {
	bp, ok := r.DiscountBasisPoints[category]
	if !ok {
		return 0, &ConfigError{Key: string(category)}
	}
	return bp, nil
}

// SurchargeFor returns the surcharge for a baggage kind and tier.
func (r *Rules) SurchargeFor(kind models.BaggageKind, tier int) (models.Cents, error) {
	var table []models.Cents
	switch kind {
	case models.BaggageKindChecked:
		table = r.CheckedBaggageCents
	case models.BaggageKindCabin:
		table = r.CabinBaggageCents
	default:
		return 0, &ConfigError{Key: string(kind)}
	}

	if tier < 0 || tier >= len(table) {
		return 0, &ConfigError{Key: fmt.Sprintf("%s tier %d", kind, tier)}
	}
	return table[tier], nil
}

// MaxTier returns the highest configured tier for a baggage kind, used by the
// eligibility validator to reject out-of-range input before pricing.
func (r *Rules) MaxTier(kind models.BaggageKind) int {
	switch kind {
	case models.BaggageKindChecked:
		return len(r.CheckedBaggageCents) - 1
	case models.BaggageKindCabin:
		return len(r.CabinBaggageCents) - 1
	}
	return 0
}
