package scanner

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/younsl/idlelb/internal/metrics"
	"github.com/younsl/idlelb/internal/models"
)

// Remover deletes one load balancer
type Remover interface {
	Delete(ctx context.Context, rec models.ResourceRecord) error
}

// Executor deletes records concurrently, one delete call per record
type Executor struct {
	remover Remover
	limit   int
	metrics *metrics.Recorder
}

// NewExecutor creates an Executor. A limit of zero means no cap on parallel deletes.
func NewExecutor(remover Remover, limit int, rec *metrics.Recorder) *Executor {
	return &Executor{remover: remover, limit: limit, metrics: rec}
}

// Execute deletes every record and returns one outcome per record. A failed
// delete never stops the others and nothing is retried or rolled back.
func (e *Executor) Execute(ctx context.Context, account string, records []models.ResourceRecord) []models.DeletionOutcome {
	var (
		mu       sync.Mutex
		outcomes = make([]models.DeletionOutcome, 0, len(records))
	)

	var g errgroup.Group
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for _, rec := range records {
		g.Go(func() error {
			err := e.remover.Delete(ctx, rec)
			outcome := models.DeletionOutcome{
				ID:        rec.ID,
				Kind:      rec.Kind,
				Region:    rec.Region,
				Succeeded: err == nil,
			}
			if err != nil {
				outcome.Err = models.NewDeletionError(account, rec.Region, err)
				log.Error().Err(err).Str("account", account).Str("region", rec.Region).Str("lb", rec.ID).Msg("failed to delete load balancer")
			} else {
				log.Info().Str("account", account).Str("region", rec.Region).Str("lb", rec.ID).Msg("deleted load balancer")
			}
			e.metrics.Deletion(string(rec.Kind), err == nil)

			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}
