package amortization

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
)

func TestSimulate_GoldenValues(t *testing.T) {
	result, err := Simulate(1000, 0.01, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSAC := []Installment{
		{Number: 1, Amortization: 333.33, Interest: 10.00, Payment: 343.33},
		{Number: 2, Amortization: 333.33, Interest: 6.67, Payment: 340.00},
		{Number: 3, Amortization: 333.33, Interest: 3.33, Payment: 336.67},
	}
	wantPrice := []Installment{
		{Number: 1, Amortization: 330.02, Interest: 10.00, Payment: 340.02},
		{Number: 2, Amortization: 330.02, Interest: 10.00, Payment: 340.02},
		{Number: 3, Amortization: 330.02, Interest: 10.00, Payment: 340.02},
	}

	if got := result.SAC(); got.Policy != PolicySAC || !reflect.DeepEqual(got.Installments, wantSAC) {
		t.Errorf("SAC schedule = %+v, expected %+v", got, wantSAC)
	}
	if got := result.Price(); got.Policy != PolicyPrice || !reflect.DeepEqual(got.Installments, wantPrice) {
		t.Errorf("PRICE schedule = %+v, expected %+v", got, wantPrice)
	}
}

func TestSimulate_ScheduleOrder(t *testing.T) {
	result, err := Simulate(5000, 0.0179, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Schedules) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(result.Schedules))
	}
	if result.Schedules[0].Policy != PolicySAC || result.Schedules[1].Policy != PolicyPrice {
		t.Errorf("expected SAC then PRICE, got %s then %s", result.Schedules[0].Policy, result.Schedules[1].Policy)
	}
}

func TestSimulate_Properties(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		term      int
	}{
		{"Single period", 1500, 0.02, 1},
		{"Short loan", 1000, 0.01, 3},
		{"Product 1 range", 9999.99, 0.0179, 24},
		{"Product 2 range", 50000, 0.0175, 48},
		{"Long mortgage", 1_250_000, 0.0151, 360},
		{"Odd principal", 777.77, 0.033, 7},
		{"Tiny rate", 100, 1e-9, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Simulate(tt.principal, tt.rate, tt.term)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for _, schedule := range result.Schedules {
				if len(schedule.Installments) != tt.term {
					t.Fatalf("%s: expected %d installments, got %d", schedule.Policy, tt.term, len(schedule.Installments))
				}
				for i, inst := range schedule.Installments {
					if inst.Number != i+1 {
						t.Errorf("%s: row %d has number %d", schedule.Policy, i, inst.Number)
					}
				}
			}

			sac := result.SAC().Installments
			wantAmortization := Round2(tt.principal / float64(tt.term))
			var sum float64
			for i, inst := range sac {
				if inst.Amortization != wantAmortization {
					t.Errorf("SAC row %d amortization = %v, expected %v", i+1, inst.Amortization, wantAmortization)
				}
				if i > 0 && inst.Interest > sac[i-1].Interest {
					t.Errorf("SAC row %d interest %v increased from %v", i+1, inst.Interest, sac[i-1].Interest)
				}
				sum += inst.Amortization
			}
			if tolerance := 0.01*float64(tt.term) + 1e-6; math.Abs(sum-tt.principal) > tolerance {
				t.Errorf("SAC amortization sum = %v, expected %v within %v", sum, tt.principal, tolerance)
			}

			price := result.Price().Installments
			for i, inst := range price {
				if inst.Payment != price[0].Payment {
					t.Errorf("PRICE row %d payment = %v, expected %v", i+1, inst.Payment, price[0].Payment)
				}
				if inst.Interest != price[0].Interest {
					t.Errorf("PRICE row %d interest = %v, expected %v", i+1, inst.Interest, price[0].Interest)
				}
			}
			if want := Round2(tt.principal * tt.rate); price[0].Interest != want {
				t.Errorf("PRICE interest = %v, expected %v", price[0].Interest, want)
			}
		})
	}
}

func TestSimulate_ZeroRate(t *testing.T) {
	result, err := Simulate(1200, 0, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, schedule := range result.Schedules {
		for _, inst := range schedule.Installments {
			if inst.Interest != 0 {
				t.Errorf("%s row %d: expected zero interest, got %v", schedule.Policy, inst.Number, inst.Interest)
			}
			if inst.Amortization != 100 || inst.Payment != 100 {
				t.Errorf("%s row %d: expected amortization and payment of 100, got %v and %v",
					schedule.Policy, inst.Number, inst.Amortization, inst.Payment)
			}
		}
	}
}

func TestSimulate_ZeroRateUnevenSplit(t *testing.T) {
	result, err := Simulate(1000, 0, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, schedule := range result.Schedules {
		for _, inst := range schedule.Installments {
			if inst.Interest != 0 || inst.Payment != inst.Amortization || inst.Payment != 333.33 {
				t.Errorf("%s row %d = %+v, expected 333.33 with no interest", schedule.Policy, inst.Number, inst)
			}
		}
	}
}

func TestSimulate_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		term      int
		field     string
	}{
		{"Zero principal", 0, 0.01, 12, FieldPrincipal},
		{"Negative principal", -100, 0.01, 12, FieldPrincipal},
		{"NaN principal", math.NaN(), 0.01, 12, FieldPrincipal},
		{"Infinite principal", math.Inf(1), 0.01, 12, FieldPrincipal},
		{"Negative rate", 1000, -0.01, 12, FieldPeriodicRate},
		{"NaN rate", 1000, math.NaN(), 12, FieldPeriodicRate},
		{"Zero term", 1000, 0.01, 0, FieldTermPeriods},
		{"Negative term", 1000, 0.01, -3, FieldTermPeriods},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Simulate(tt.principal, tt.rate, tt.term)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}

			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("expected *InputError, got %T", err)
			}
			if inputErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, inputErr.Field)
			}
			if result.Schedules != nil {
				t.Errorf("expected no schedules, got %+v", result.Schedules)
			}
		})
	}
}

func TestSimulate_NumericOverflow(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		term      int
	}{
		{"Growth overflows", 1000, 1.0, 2000},
		{"Principal times growth overflows", 1e308, 0.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Simulate(tt.principal, tt.rate, tt.term)
			if !errors.Is(err, ErrNumericOverflow) {
				t.Fatalf("expected ErrNumericOverflow, got %v", err)
			}
			if result.Schedules != nil {
				t.Errorf("expected no schedules, got %+v", result.Schedules)
			}
		})
	}
}

func TestPricePayment(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		term      int
		expected  float64
	}{
		{"Zero rate", 1200, 0, 12, 100},
		{"One percent three periods", 1000, 0.01, 3, 340.02},
		{"Single period", 1000, 0.05, 1, 1050},
		{"Rate lost in 1+rate", 1200, 1e-18, 12, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Round2(PricePayment(tt.principal, tt.rate, tt.term))
			if got != tt.expected {
				t.Errorf("PricePayment() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestSimulate_Concurrent(t *testing.T) {
	want, err := Simulate(25000, 0.0175, 36)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Simulate(25000, 0.0175, 36)
			if err != nil {
				errs <- err.Error()
				return
			}
			if !reflect.DeepEqual(got, want) {
				errs <- "concurrent result differs from sequential result"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}
