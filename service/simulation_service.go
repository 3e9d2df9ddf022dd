package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loan-simulator/amortization"
	"loan-simulator/domain"
	"loan-simulator/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrProductNotFound is returned when no product covers the request.
	ErrProductNotFound = repository.ErrProductNotFound

	// ErrPublish wraps failures delivering the envelope to the event sink.
	ErrPublish = errors.New("failed to publish simulation envelope")
)

// ProductFinder resolves the product, and therefore the rate, for a request.
type ProductFinder interface {
	FindEligible(ctx context.Context, termMonths int, amount float64) (domain.Product, error)
}

type SimulationService struct {
	products  ProductFinder
	publisher repository.EventPublisher
	logger    *zap.Logger
	newID     func() string
}

// NewSimulationService creates a SimulationService resolving rates through
// products and publishing envelopes through publisher.
func NewSimulationService(products ProductFinder,
	publisher repository.EventPublisher,
	logger *zap.Logger,
) *SimulationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulationService{
		products:  products,
		publisher: publisher,
		logger:    logger,
		newID:     func() string { return uuid.NewString() },
	}
}

// Simulate validates the request, resolves the eligible product, computes the
// SAC and PRICE schedules and publishes the resulting envelope. Nothing is
// published or returned when any step fails.
func (s *SimulationService) Simulate(
	ctx context.Context,
	req domain.SimulationRequest,
) (domain.SimulationEnvelope, error) {

	// Rate is validated by the engine once the product is known.
	if err := amortization.Validate(req.Amount, 0, req.TermMonths); err != nil {
		return domain.SimulationEnvelope{}, err
	}

	lookupCtx, cancel := context.WithTimeout(ctx, ProductLookupTimeoutSeconds*time.Second)
	product, err := s.products.FindEligible(lookupCtx, req.TermMonths, req.Amount)
	cancel()
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return domain.SimulationEnvelope{}, err
		}
		return domain.SimulationEnvelope{}, fmt.Errorf("resolve product: %w", err)
	}

	result, err := amortization.Simulate(req.Amount, product.Rate, req.TermMonths)
	if err != nil {
		return domain.SimulationEnvelope{}, err
	}

	envelope := domain.SimulationEnvelope{
		ID:                 s.newID(),
		ProductCode:        product.Code,
		ProductDescription: product.Description,
		InterestRate:       product.Rate,
		Schedules:          toSchedules(result),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return domain.SimulationEnvelope{}, fmt.Errorf("encode envelope: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, PublishTimeoutSeconds*time.Second)
	defer cancel()
	if err := s.publisher.Publish(publishCtx, envelope.ID, payload); err != nil {
		s.logger.Error("failed to publish simulation",
			zap.String("op", "SimulationService.Simulate"),
			zap.String("simulation", envelope.ID),
			zap.Error(err),
		)
		return domain.SimulationEnvelope{}, fmt.Errorf("%w: %w", ErrPublish, err)
	}

	s.logger.Info("simulation completed",
		zap.String("op", "SimulationService.Simulate"),
		zap.String("simulation", envelope.ID),
		zap.Int("product", product.Code),
		zap.Float64("amount", req.Amount),
		zap.Int("term", req.TermMonths),
	)
	return envelope, nil
}

func toSchedules(result amortization.Result) []domain.Schedule {
	schedules := make([]domain.Schedule, 0, len(result.Schedules))
	for _, sch := range result.Schedules {
		installments := make([]domain.Installment, 0, len(sch.Installments))
		for _, inst := range sch.Installments {
			installments = append(installments, domain.Installment{
				Number:       inst.Number,
				Amortization: inst.Amortization,
				Interest:     inst.Interest,
				Payment:      inst.Payment,
			})
		}
		schedules = append(schedules, domain.Schedule{
			Type:         string(sch.Policy),
			Installments: installments,
		})
	}
	return schedules
}
