package scanner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/younsl/idlelb/internal/metrics"
	"github.com/younsl/idlelb/internal/models"
)

// Governor bounds how many classifications run at once
type Governor struct {
	capacity int
	metrics  *metrics.Recorder
}

// NewGovernor creates a Governor allowing capacity calls in flight
func NewGovernor(capacity int, rec *metrics.Recorder) *Governor {
	if capacity < 1 {
		capacity = 1
	}
	return &Governor{capacity: capacity, metrics: rec}
}

// Run calls fn once per load balancer with at most capacity calls in flight,
// and returns when every call has finished. Load balancers not yet started
// when ctx is done are skipped.
func (g *Governor) Run(ctx context.Context, lbs []models.LoadBalancer, fn func(context.Context, models.LoadBalancer)) {
	var eg errgroup.Group
	eg.SetLimit(g.capacity)

	for _, lb := range lbs {
		if ctx.Err() != nil {
			break
		}
		// blocks while capacity calls are in flight
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			g.metrics.ClassifyStarted()
			defer g.metrics.ClassifyDone()
			fn(ctx, lb)
			return nil
		})
	}
	_ = eg.Wait()
}
