package repository

import (
	"context"
	"sync"

	"loan-simulator/domain"
)

// ProductRepositoryMemory is an in-memory implementation of ProductRepository.
type ProductRepositoryMemory struct {
	mu   sync.RWMutex
	data []domain.Product
}

// NewProductRepositoryMemory creates an in-memory repository holding products.
func NewProductRepositoryMemory(products ...domain.Product) *ProductRepositoryMemory {
	return &ProductRepositoryMemory{
		data: append([]domain.Product{}, products...),
	}
}

// ListProducts returns a copy of the stored products.
func (r *ProductRepositoryMemory) ListProducts(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Product{}, r.data...), nil
}

// Replace swaps the stored products.
func (r *ProductRepositoryMemory) Replace(products []domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append([]domain.Product{}, products...)
}
