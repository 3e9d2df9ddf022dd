package amortization

import "github.com/shopspring/decimal"

// CentPlaces is the number of decimal places kept for monetary fields.
const CentPlaces = 2

// Round2 rounds v to cents, half away from zero, on the shortest decimal
// representation of v. 1.005 rounds to 1.01 and -2.675 to -2.68 even though
// neither is exactly representable as a float64.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(CentPlaces).InexactFloat64()
}
