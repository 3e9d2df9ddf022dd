// Package scheduler runs periodic maintenance jobs for the simulator.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher reloads a cached data set from its source of truth.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// CatalogRefresher refreshes the product catalog on a cron schedule.
type CatalogRefresher struct {
	cron      *cron.Cron
	refresher Refresher
	timeout   time.Duration
	logger    *zap.Logger
}

// NewCatalogRefresher registers refresher under spec, which accepts standard
// five-field expressions and descriptors such as "@every 5m".
func NewCatalogRefresher(spec string, refresher Refresher, logger *zap.Logger) (*CatalogRefresher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &CatalogRefresher{
		cron:      cron.New(),
		refresher: refresher,
		timeout:   30 * time.Second,
		logger:    logger,
	}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return r, nil
}

func (r *CatalogRefresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	if err := r.refresher.Refresh(ctx); err != nil {
		r.logger.Error("catalog refresh failed",
			zap.String("op", "CatalogRefresher.run"),
			zap.Error(err),
		)
		return
	}
	r.logger.Debug("catalog refreshed",
		zap.String("op", "CatalogRefresher.run"),
		zap.Duration("took", time.Since(start)),
	)
}

// Start runs the schedule in the background.
func (r *CatalogRefresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *CatalogRefresher) Stop() {
	<-r.cron.Stop().Done()
}
