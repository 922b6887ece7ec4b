// Package eligibility gates booking requests before pricing and persistence.
// The validator is a stateless, single-pass predicate over a request
// snapshot: every check runs even after one fails, so the caller can show
// all problems at once.
package eligibility

import (
	"fmt"
	"time"

	"github.com/aerovia/booking/internal/fare"
	"github.com/aerovia/booking/internal/models"
)

// MinPassportValidityMonths is how far past departure a passport must remain
// valid.
const MinPassportValidityMonths = 6

// Validator validates booking requests. The seat check here is advisory; the
// authoritative capacity check happens in the ticket store's transaction at
// commit time.
type Validator struct {
	rules *fare.Rules
}

// New creates a Validator bound to a fare rule table (needed to know which
// baggage tiers exist).
func New(rules *fare.Rules) *Validator {
	return &Validator{rules: rules}
}

// Validate runs every eligibility check against the request and returns the
// itemized result.
func (v *Validator) Validate(req *models.CreateBookingRequest, availableSeats int, departure time.Time, availablePoints int64) models.EligibilityResult {
	result := models.EligibilityResult{Eligible: true}

	if len(req.Passengers) == 0 {
		result.Add("passengers", "at least one passenger is required")
	}
	if len(req.Passengers) > availableSeats {
		result.Add("passengers", fmt.Sprintf("insufficient seats: %d available, %d requested", availableSeats, len(req.Passengers)))
	}

	if req.Contact.Email == "" {
		result.Add("contact.email", "missing field")
	}
	if req.Contact.Phone == "" {
		result.Add("contact.phone", "missing field")
	}

	for i, p := range req.Passengers {
		v.validatePassenger(&result, i, p, departure)
	}

	if req.LoyaltyPointsRedeemed < 0 {
		result.Add("loyaltyPointsRedeemed", "must not be negative")
	} else if req.LoyaltyPointsRedeemed > availablePoints {
		result.Add("loyaltyPointsRedeemed", fmt.Sprintf("insufficient loyalty points: %d available", availablePoints))
	}

	return result
}

func (v *Validator) validatePassenger(result *models.EligibilityResult, i int, p models.PassengerSelection, departure time.Time) {
	field := func(name string) string {
		return fmt.Sprintf("passengers[%d].%s", i, name)
	}

	required := []struct {
		name  string
		value string
	}{
		{"firstName", p.FirstName},
		{"lastName", p.LastName},
		{"nationality", p.Nationality},
		{"passportNumber", p.PassportNumber},
		{"emergencyContactName", p.EmergencyContactName},
		{"emergencyContactPhone", p.EmergencyContactPhone},
	}
	for _, f := range required {
		if f.value == "" {
			result.Add(field(f.name), "missing field")
		}
	}

	if p.DateOfBirth.IsZero() {
		result.Add(field("dateOfBirth"), "missing field")
	} else {
		switch p.AgeCategory {
		case models.AgeCategoryAdult, models.AgeCategoryChild, models.AgeCategoryInfant:
			if derived := models.CategoryForAge(p.DateOfBirth, departure); derived != p.AgeCategory {
				result.Add(field("ageCategory"),
					fmt.Sprintf("category %q does not match date of birth (expected %q at departure)", p.AgeCategory, derived))
			}
		case "":
			result.Add(field("ageCategory"), "missing field")
		default:
			result.Add(field("ageCategory"), fmt.Sprintf("unknown category %q", p.AgeCategory))
		}
	}

	if p.PassportExpiry.IsZero() {
		result.Add(field("passportExpiry"), "missing field")
	} else if p.PassportExpiry.Before(departure.AddDate(0, MinPassportValidityMonths, 0)) {
		result.Add(field("passportExpiry"), "passport expiring too soon")
	}

	if p.CheckedBaggageTier < 0 || p.CheckedBaggageTier > v.rules.MaxTier(models.BaggageKindChecked) {
		result.Add(field("checkedBaggageTier"), fmt.Sprintf("unknown baggage tier %d", p.CheckedBaggageTier))
	}
	if p.CabinBaggageTier < 0 || p.CabinBaggageTier > v.rules.MaxTier(models.BaggageKindCabin) {
		result.Add(field("cabinBaggageTier"), fmt.Sprintf("unknown baggage tier %d", p.CabinBaggageTier))
	}
}
