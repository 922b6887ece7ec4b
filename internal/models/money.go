package models

import "fmt"

// Cents is a currency amount in integer minor units (US cents).
// All pricing arithmetic is done in Cents; rendering as a decimal
// string happens only at the presentation boundary.
type Cents int64

// Dollars renders the amount as a two-decimal dollar string, e.g. "930.00".
func (c Cents) Dollars() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
