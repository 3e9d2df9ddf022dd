package amortization

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is matched by every *InputError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNumericOverflow is returned when principal*(1+rate)^term is not
	// representable as a float64.
	ErrNumericOverflow = errors.New("numeric overflow")
)

// Field names reported by InputError.
const (
	FieldPrincipal    = "principal"
	FieldPeriodicRate = "periodicRate"
	FieldTermPeriods  = "termPeriods"
)

// InputError reports which input was rejected and why.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// Validate checks the inputs of Simulate. It returns the first violation found,
// checking principal, then rate, then term.
func Validate(principal, periodicRate float64, termPeriods int) error {
	switch {
	case math.IsNaN(principal) || math.IsInf(principal, 0):
		return &InputError{Field: FieldPrincipal, Reason: "must be a finite number"}
	case principal <= 0:
		return &InputError{Field: FieldPrincipal, Reason: "must be greater than zero"}
	case math.IsNaN(periodicRate) || math.IsInf(periodicRate, 0):
		return &InputError{Field: FieldPeriodicRate, Reason: "must be a finite number"}
	case periodicRate < 0:
		return &InputError{Field: FieldPeriodicRate, Reason: "must not be negative"}
	case termPeriods < 1:
		return &InputError{Field: FieldTermPeriods, Reason: "must be at least 1"}
	}
	return nil
}
