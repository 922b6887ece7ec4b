package models

import "time"

// AgeCategory classifies a passenger for fare purposes
type AgeCategory string

const (
	AgeCategoryAdult  AgeCategory = "adult"
	AgeCategoryChild  AgeCategory = "child"
	AgeCategoryInfant AgeCategory = "infant"
)

// Age boundaries (in years at departure time) separating the categories.
const (
	InfantMaxAge = 2
	ChildMaxAge  = 12
)

// CategoryForAge derives the fare category from a date of birth as of the
// flight's departure.
func CategoryForAge(dateOfBirth, departure time.Time) AgeCategory {
	years := departure.Year() - dateOfBirth.Year()
	if departure.YearDay() < dateOfBirth.YearDay() {
		years--
	}
	switch {
	case years < InfantMaxAge:
		return AgeCategoryInfant
	case years < ChildMaxAge:
		return AgeCategoryChild
	default:
		return AgeCategoryAdult
	}
}

// BaggageKind distinguishes the two priced baggage allowances
type BaggageKind string

const (
	BaggageKindChecked BaggageKind = "checked"
	BaggageKindCabin   BaggageKind = "cabin"
)

// PassengerSelection is one passenger's validated booking input
type PassengerSelection struct {
	FirstName             string      `json:"firstName"`
	LastName              string      `json:"lastName"`
	DateOfBirth           time.Time   `json:"dateOfBirth"`
	Nationality           string      `json:"nationality"`
	PassportNumber        string      `json:"passportNumber"`
	PassportExpiry        time.Time   `json:"passportExpiry"`
	AgeCategory           AgeCategory `json:"ageCategory"`
	CheckedBaggageTier    int         `json:"checkedBaggageTier"`
	CabinBaggageTier      int         `json:"cabinBaggageTier"`
	Insurance             bool        `json:"insurance"`
	EmergencyContactName  string      `json:"emergencyContactName"`
	EmergencyContactPhone string      `json:"emergencyContactPhone"`
}
