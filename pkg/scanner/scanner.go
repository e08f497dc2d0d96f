// Package scanner fans classification out across regions and load balancers
// and collects the results per account.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/younsl/idlelb/internal/metrics"
	"github.com/younsl/idlelb/internal/models"
)

// Source lists and classifies one kind of load balancer in one region
type Source interface {
	Kind() models.LoadBalancerKind
	List(ctx context.Context) ([]models.LoadBalancer, error)
	Classify(ctx context.Context, lb models.LoadBalancer, days int) (models.ActivityState, error)
}

// Backend hands out region-scoped sources for one account
type Backend interface {
	Source(region string, kind models.LoadBalancerKind) Source
	MissingVPCs(ctx context.Context, region string, ids []string) ([]string, error)
}

// Options controls a scan
type Options struct {
	Days    int
	Kinds   []models.LoadBalancerKind
	Workers map[models.LoadBalancerKind]int
	Strict  bool
	Metrics *metrics.Recorder
}

// Scanner runs the list and classify pipeline for one account
type Scanner struct {
	backend Backend
	opts    Options
	now     func() time.Time
}

// New creates a Scanner
func New(backend Backend, opts Options) *Scanner {
	return &Scanner{backend: backend, opts: opts, now: time.Now}
}

// ScanAccount scans every region of the account concurrently. A failed region
// contributes no records and does not stop the others; all region errors are
// joined into the returned error.
func (s *Scanner) ScanAccount(ctx context.Context, account *models.AccountContext) ([]models.ResourceRecord, error) {
	results := make([][]models.ResourceRecord, len(account.Regions))
	errs := make([]error, len(account.Regions))

	var wg sync.WaitGroup
	for i, region := range account.Regions {
		wg.Add(1)
		go func(idx int, r string) {
			defer wg.Done()
			results[idx], errs[idx] = s.ScanRegion(ctx, account, r)
		}(i, region)
	}
	wg.Wait()

	var records []models.ResourceRecord
	for _, r := range results {
		records = append(records, r...)
	}
	return records, errors.Join(errs...)
}

// ScanRegion lists and classifies every enabled kind in one region. Any
// listing failure discards the region's records.
func (s *Scanner) ScanRegion(ctx context.Context, account *models.AccountContext, region string) ([]models.ResourceRecord, error) {
	logger := log.With().Str("account", account.Label()).Str("region", region).Logger()

	if account.Credentials != nil && account.Credentials.Expired(s.now()) {
		s.opts.Metrics.CredentialExpired()
		return nil, models.NewCredentialError(account.AccountID,
			fmt.Errorf("credentials expired at %s before scanning %s", account.Credentials.ExpiresAt.Format(time.RFC3339), region))
	}

	s.checkVPCs(ctx, account, region)

	agg := NewAggregator(account.VPCFilter, s.opts.Strict)
	var scanErr error
	for _, kind := range s.opts.Kinds {
		if err := s.scanKind(ctx, agg, region, kind); err != nil {
			s.opts.Metrics.ListingError(string(kind))
			scanErr = err
			break
		}
	}
	records, dropped := agg.Close()

	if scanErr != nil {
		var credErr *models.Error
		if errors.As(scanErr, &credErr) && credErr.Kind == models.KindCredential {
			s.opts.Metrics.CredentialExpired()
			return nil, models.NewCredentialError(account.AccountID, fmt.Errorf("region %s: %w", region, credErr.Err))
		}
		return nil, models.NewListingError(account.AccountID, region, scanErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, models.NewListingError(account.AccountID, region, fmt.Errorf("scan interrupted: %w", err))
	}

	logger.Debug().Int("records", len(records)).Int("filtered", dropped).Msg("region scanned")
	return records, nil
}

func (s *Scanner) scanKind(ctx context.Context, agg *Aggregator, region string, kind models.LoadBalancerKind) error {
	src := s.backend.Source(region, kind)
	lbs, err := src.List(ctx)
	if err != nil {
		return err
	}
	log.Debug().Str("region", region).Str("kind", string(kind)).Int("count", len(lbs)).Msg("listed load balancers")

	var (
		mu       sync.Mutex
		firstErr error
	)
	NewGovernor(s.opts.Workers[kind], s.opts.Metrics).Run(ctx, lbs, func(ctx context.Context, lb models.LoadBalancer) {
		state, err := src.Classify(ctx, lb, s.opts.Days)
		if err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			return
		}
		s.opts.Metrics.Classified(string(kind), state.String())
		agg.Add(models.NewResourceRecord(lb, state))
	})
	return firstErr
}

// checkVPCs warns about filter entries that do not exist in the region
func (s *Scanner) checkVPCs(ctx context.Context, account *models.AccountContext, region string) {
	if !account.VPCFilter.Enabled() {
		return
	}
	missing, err := s.backend.MissingVPCs(ctx, region, account.VPCFilter.IDs())
	if err != nil {
		log.Debug().Err(err).Str("region", region).Msg("could not validate VPC filter")
		return
	}
	for _, id := range missing {
		log.Warn().Str("account", account.Label()).Str("region", region).Str("vpc", id).Msg("VPC in filter not found in region")
	}
}
