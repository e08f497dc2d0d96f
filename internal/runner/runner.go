// Package runner drives one idlelb run: an account pipeline per configured
// account, then reporting or deletion of the inactive load balancers.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/younsl/idlelb/internal/config"
	"github.com/younsl/idlelb/internal/metrics"
	"github.com/younsl/idlelb/internal/models"
	"github.com/younsl/idlelb/pkg/formatter"
	"github.com/younsl/idlelb/pkg/pricing"
	"github.com/younsl/idlelb/pkg/scanner"
	"github.com/younsl/idlelb/pkg/utils"
)

// Backend is everything an account pipeline needs from the cloud
type Backend interface {
	scanner.Backend
	scanner.Remover
}

// Provider creates account contexts and their backends
type Provider interface {
	Checkout(ctx context.Context, acct models.AccountConfig) (*models.AccountContext, error)
	Ambient(ctx context.Context, regions, vpcIDs []string) *models.AccountContext
	Backend(account *models.AccountContext) Backend
}

// Uploader copies a report file somewhere durable
type Uploader interface {
	Upload(ctx context.Context, file string) (string, error)
}

// Runner executes a configured run
type Runner struct {
	cfg       *config.Config
	provider  Provider
	out       io.Writer
	metrics   *metrics.Recorder
	estimator *pricing.Estimator
	uploader  Uploader

	// account-less mode
	regions []string
	vpcIDs  []string
}

// Option configures a Runner
type Option func(*Runner)

// WithOutput sets where reports are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithMetrics records scan counters
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = rec }
}

// WithEstimator adds a monthly cost to each inactive record
func WithEstimator(e *pricing.Estimator) Option {
	return func(r *Runner) { r.estimator = e }
}

// WithUploader uploads file reports after writing them
func WithUploader(u Uploader) Option {
	return func(r *Runner) { r.uploader = u }
}

// WithAccountless scans the ambient account when the config lists no accounts
func WithAccountless(regions, vpcIDs []string) Option {
	return func(r *Runner) {
		r.regions = regions
		r.vpcIDs = vpcIDs
	}
}

// New creates a Runner
func New(cfg *config.Config, provider Provider, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, provider: provider, out: os.Stdout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every account pipeline and reports the results. Successful
// accounts and regions are reported even when others failed; the returned
// error joins every structural failure.
func (r *Runner) Run(ctx context.Context) error {
	results, err := r.Execute(ctx)
	return errors.Join(err, r.Report(ctx, results))
}

// Execute runs the account pipelines concurrently and returns one result per account
func (r *Runner) Execute(ctx context.Context) ([]models.AccountResult, error) {
	type checkoutFunc func() (*models.AccountContext, *models.AccountContext, error)

	var pipelines []checkoutFunc
	if len(r.cfg.AWS.Accounts) == 0 {
		pipelines = append(pipelines, func() (*models.AccountContext, *models.AccountContext, error) {
			account := r.provider.Ambient(ctx, r.regions, r.vpcIDs)
			return account, account, nil
		})
	}
	for _, acct := range r.cfg.AWS.Accounts {
		pipelines = append(pipelines, func() (*models.AccountContext, *models.AccountContext, error) {
			stub := &models.AccountContext{RoleARN: acct.RoleARN, Regions: acct.Regions}
			account, err := r.provider.Checkout(ctx, acct)
			return stub, account, err
		})
	}

	results := make([]models.AccountResult, len(pipelines))
	var g errgroup.Group
	for i, checkout := range pipelines {
		g.Go(func() error {
			stub, account, err := checkout()
			if err != nil {
				log.Error().Err(err).Str("role", stub.RoleARN).Msg("skipping account")
				results[i] = models.AccountResult{Account: *stub, Err: err}
				return nil
			}
			results[i] = r.runAccount(ctx, account)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return results, errors.Join(errs...)
}

// runAccount scans one account, filters to inactive records and, in delete
// mode, removes them. Credentials are released when it returns.
func (r *Runner) runAccount(ctx context.Context, account *models.AccountContext) models.AccountResult {
	logger := log.With().Str("account", account.Label()).Logger()
	for _, region := range account.Regions {
		if !utils.IsValidRegion(region) {
			logger.Warn().Str("region", region).Msg("unrecognized region")
		}
	}

	backend := r.provider.Backend(account)
	s := scanner.New(backend, scanner.Options{
		Days:  r.cfg.Days,
		Kinds: r.cfg.Kinds,
		Workers: map[models.LoadBalancerKind]int{
			models.SingleStage: r.cfg.Workers(models.SingleStage),
			models.MultiStage:  r.cfg.Workers(models.MultiStage),
		},
		Strict:  r.cfg.Strict(),
		Metrics: r.metrics,
	})

	records, scanErr := s.ScanAccount(ctx, account)
	if scanErr != nil {
		logger.Error().Err(scanErr).Msg("scan finished with errors")
	}
	inactive := models.InactiveRecords(records)
	logger.Info().Int("scanned", len(records)).Int("inactive", len(inactive)).Msg("account scanned")

	if r.estimator != nil {
		r.estimator.Annotate(ctx, inactive)
	}

	var outcomes []models.DeletionOutcome
	if r.cfg.RunOption == models.RunDelete {
		outcomes = scanner.NewExecutor(backend, r.cfg.Scan.MaxConcurrentDeletes, r.metrics).Execute(ctx, account.Label(), inactive)
	}

	account.Release()
	return models.AccountResult{
		Account:  *account,
		Scanned:  true,
		Records:  inactive,
		Outcomes: outcomes,
		Err:      scanErr,
	}
}

// Report renders the results in the configured run mode and format
func (r *Runner) Report(ctx context.Context, results []models.AccountResult) error {
	var (
		errs       []error
		csvRecords []models.ResourceRecord
	)
	for _, res := range results {
		if !res.Scanned {
			continue
		}
		label := res.Account.Label()

		if r.cfg.RunOption == models.RunDelete {
			formatter.PrintDeletionTable(r.out, label, res.Outcomes)
			continue
		}

		switch r.cfg.Format {
		case models.FormatTabled:
			withCost := r.estimator != nil
			fmt.Fprintf(r.out, "\n# %s\n", label)
			for _, kind := range r.cfg.Kinds {
				formatter.PrintLoadBalancerTable(r.out, kind, models.RecordsOfKind(res.Records, kind), withCost)
			}
			formatter.PrintLoadBalancerSummary(r.out, label, res.Records, withCost)
		case models.FormatCSV:
			csvRecords = append(csvRecords, res.Records...)
		case models.FormatFile:
			if err := r.writeFiles(ctx, res); err != nil {
				errs = append(errs, err)
			}
		default:
			errs = append(errs, models.NewConfigError(fmt.Errorf("unknown format %q", r.cfg.Format)))
		}
	}

	if r.cfg.RunOption == models.RunList && r.cfg.Format == models.FormatCSV {
		if err := r.writeCSVStream(csvRecords); err != nil {
			errs = append(errs, err)
		}
	}

	if r.estimator != nil && r.cfg.Format == models.FormatTabled {
		formatter.PrintPricingAPIStats(r.out, r.estimator.APIStats())
	}
	return errors.Join(errs...)
}

// writeCSVStream writes one header per kind that has records, so a single
// kind run is one parseable CSV document. With no records at all only the
// first kind's header is written.
func (r *Runner) writeCSVStream(records []models.ResourceRecord) error {
	wrote := false
	for _, kind := range r.cfg.Kinds {
		recs := models.RecordsOfKind(records, kind)
		if len(recs) == 0 {
			continue
		}
		if wrote {
			fmt.Fprintln(r.out)
		}
		if err := formatter.WriteCSV(r.out, kind, recs); err != nil {
			return err
		}
		wrote = true
	}
	if !wrote && len(r.cfg.Kinds) > 0 {
		return formatter.WriteCSV(r.out, r.cfg.Kinds[0], nil)
	}
	return nil
}

func (r *Runner) writeFiles(ctx context.Context, res models.AccountResult) error {
	paths, err := formatter.WriteReportFiles(r.cfg.OutputDir, res.Account.AccountID, r.cfg.Kinds, res.Records)
	if err != nil {
		return err
	}

	var errs []error
	for _, path := range paths {
		log.Info().Str("account", res.Account.Label()).Str("file", path).Msg("wrote report")
		if r.uploader == nil {
			continue
		}
		uri, err := r.uploader.Upload(ctx, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		log.Info().Str("uri", uri).Msg("uploaded report")
	}
	return errors.Join(errs...)
}
