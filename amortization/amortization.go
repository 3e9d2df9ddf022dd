// Package amortization generates loan repayment schedules under the SAC
// (constant amortization) and PRICE (constant installment) policies.
//
// The package is pure: no I/O, no shared state. Every call owns its own
// accumulators, so Simulate is safe to call from any number of goroutines.
package amortization

import (
	"math"
)

// Policy identifies an amortization policy.
type Policy string

const (
	PolicySAC   Policy = "SAC"
	PolicyPrice Policy = "PRICE"
)

// Installment is one row of a repayment schedule. The three monetary fields
// are rounded independently from their unrounded values.
type Installment struct {
	Number       int
	Amortization float64
	Interest     float64
	Payment      float64
}

// Schedule is an ordered list of installments produced under one policy.
type Schedule struct {
	Policy       Policy
	Installments []Installment
}

// Result holds one schedule per policy, SAC first and PRICE second.
type Result struct {
	Schedules []Schedule
}

// SAC returns the constant-amortization schedule of r.
func (r Result) SAC() Schedule { return r.Schedules[0] }

// Price returns the constant-installment schedule of r.
func (r Result) Price() Schedule { return r.Schedules[1] }

// Simulate validates the inputs and returns the SAC and PRICE schedules for
// borrowing principal at periodicRate (a fraction, 0.01 is 1%) over
// termPeriods installments.
func Simulate(principal, periodicRate float64, termPeriods int) (Result, error) {
	if err := Validate(principal, periodicRate, termPeriods); err != nil {
		return Result{}, err
	}
	if err := checkOverflow(principal, periodicRate, termPeriods); err != nil {
		return Result{}, err
	}

	return Result{
		Schedules: []Schedule{
			{Policy: PolicySAC, Installments: sacInstallments(principal, periodicRate, termPeriods)},
			{Policy: PolicyPrice, Installments: priceInstallments(principal, periodicRate, termPeriods)},
		},
	}, nil
}

// sacInstallments keeps the amortization constant and charges interest on the
// outstanding balance, which is decremented by the unrounded amortization.
func sacInstallments(principal, rate float64, term int) []Installment {
	amortization := principal / float64(term)
	balance := principal
	out := make([]Installment, 0, term)

	for i := 1; i <= term; i++ {
		interest := balance * rate
		balance -= amortization
		payment := amortization + interest

		out = append(out, Installment{
			Number:       i,
			Amortization: Round2(amortization),
			Interest:     Round2(interest),
			Payment:      Round2(payment),
		})
	}
	return out
}

// priceInstallments keeps the payment constant. Interest is charged on the
// original principal every period, not on a declining balance.
func priceInstallments(principal, rate float64, term int) []Installment {
	payment := PricePayment(principal, rate, term)
	interest := principal * rate
	amortization := payment - interest
	out := make([]Installment, 0, term)

	for i := 1; i <= term; i++ {
		out = append(out, Installment{
			Number:       i,
			Amortization: Round2(amortization),
			Interest:     Round2(interest),
			Payment:      Round2(payment),
		})
	}
	return out
}

// PricePayment returns the unrounded constant installment of the PRICE policy.
// A zero rate, or one too small to move 1+rate away from 1, reduces to
// principal / term.
func PricePayment(principal, rate float64, term int) float64 {
	if rate == 0 {
		return principal / float64(term)
	}
	discount := 1 - math.Pow(1+rate, -float64(term))
	if discount == 0 {
		return principal / float64(term)
	}
	return (principal * rate) / discount
}

func checkOverflow(principal, rate float64, term int) error {
	growth := math.Pow(1+rate, float64(term))
	if math.IsInf(growth, 0) || math.IsInf(principal*growth, 0) {
		return ErrNumericOverflow
	}
	return nil
}
