package scanner

import (
	"github.com/rs/zerolog/log"

	"github.com/younsl/idlelb/internal/models"
)

// Aggregator collects records from concurrent producers. A single goroutine
// owns the result slice; producers only send.
type Aggregator struct {
	in      chan models.ResourceRecord
	done    chan struct{}
	filter  models.VPCFilter
	strict  bool
	records []models.ResourceRecord
	dropped int
}

// NewAggregator starts the collector. With strict set, records outside a
// non-empty VPC filter are dropped; otherwise every record is kept.
func NewAggregator(filter models.VPCFilter, strict bool) *Aggregator {
	a := &Aggregator{
		in:     make(chan models.ResourceRecord),
		done:   make(chan struct{}),
		filter: filter,
		strict: strict,
	}
	go a.collect()
	return a
}

func (a *Aggregator) collect() {
	defer close(a.done)
	for rec := range a.in {
		if !a.filter.Allows(rec.VpcID) {
			if a.strict {
				a.dropped++
				continue
			}
			log.Debug().Str("lb", rec.ID).Str("vpc", rec.VpcID).Msg("record outside VPC filter kept (strict_vpc_filter=false)")
		}
		a.records = append(a.records, rec)
	}
}

// Add sends one record. It must not be called after Close.
func (a *Aggregator) Add(rec models.ResourceRecord) {
	a.in <- rec
}

// Close stops the collector and returns what was kept and how many were dropped
func (a *Aggregator) Close() ([]models.ResourceRecord, int) {
	close(a.in)
	<-a.done
	return a.records, a.dropped
}
