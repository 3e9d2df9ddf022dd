package repository

import (
	"context"
	"errors"

	"loan-simulator/domain"
)

// ErrProductNotFound is returned when no product covers a requested term and
// amount.
var ErrProductNotFound = errors.New("no product found for the given amount and term")

// ProductRepository lists the credit products and their eligibility ranges.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// FindEligible returns the product covering termMonths and amount. When more
// than one product matches, the one with the highest code wins.
func FindEligible(products []domain.Product, termMonths int, amount float64) (domain.Product, error) {
	var (
		found domain.Product
		ok    bool
	)
	for _, p := range products {
		if !p.Covers(termMonths, amount) {
			continue
		}
		if !ok || p.Code > found.Code {
			found, ok = p, true
		}
	}
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return found, nil
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

// DefaultProducts is the catalog seeded into an empty product table.
func DefaultProducts() []domain.Product {
	return []domain.Product{
		{Code: 1, Description: "Produto 1", Rate: 0.0179, MinTerm: 0, MaxTerm: intPtr(24), MinAmount: 200, MaxAmount: floatPtr(10000)},
		{Code: 2, Description: "Produto 2", Rate: 0.0175, MinTerm: 25, MaxTerm: intPtr(48), MinAmount: 10000.01, MaxAmount: floatPtr(100000)},
		{Code: 3, Description: "Produto 3", Rate: 0.0182, MinTerm: 49, MaxTerm: intPtr(96), MinAmount: 100000.01, MaxAmount: floatPtr(1000000)},
		{Code: 4, Description: "Produto 4", Rate: 0.0151, MinTerm: 97, MinAmount: 1000000.01},
	}
}
