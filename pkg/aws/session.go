package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/rs/zerolog/log"

	"github.com/younsl/idlelb/internal/metrics"
	"github.com/younsl/idlelb/internal/models"
)

// Session builds region-scoped clients for one account. Clients are created
// lazily and reused for the lifetime of the account pipeline.
type Session struct {
	base    aws.Config
	account *models.AccountContext
	metrics *metrics.Recorder

	mu      sync.Mutex
	regions map[string]*regionClients
}

type regionClients struct {
	classic *ClassicELBScanner
	v2      *ELBV2Scanner
	ec2     EC2API
}

// NewSession creates a Session. When the account holds a credential snapshot,
// every client signs with it and fails once it expires.
func NewSession(base aws.Config, account *models.AccountContext, rec *metrics.Recorder) *Session {
	return &Session{
		base:    base,
		account: account,
		metrics: rec,
		regions: make(map[string]*regionClients),
	}
}

// Config returns the aws.Config for a region of this account
func (s *Session) Config(region string) aws.Config {
	cfg := s.base.Copy()
	cfg.Region = region
	if s.account.Credentials != nil {
		cfg.Credentials = NewSnapshotProvider(*s.account.Credentials)
	}
	return cfg
}

func (s *Session) clients(region string) *regionClients {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.regions[region]; ok {
		return c
	}
	cfg := s.Config(region)
	mc := NewMetricClient(cloudwatch.NewFromConfig(cfg), s.metrics)
	c := &regionClients{
		classic: NewClassicELBScanner(cfg, mc),
		v2:      NewELBV2Scanner(cfg, mc),
		ec2:     ec2.NewFromConfig(cfg),
	}
	s.regions[region] = c
	return c
}

// Classic returns the classic load balancer scanner for a region
func (s *Session) Classic(region string) *ClassicELBScanner {
	return s.clients(region).classic
}

// V2 returns the ALB/NLB scanner for a region
func (s *Session) V2(region string) *ELBV2Scanner {
	return s.clients(region).v2
}

// MissingVPCs returns the filter IDs that do not exist in the region
func (s *Session) MissingVPCs(ctx context.Context, region string, ids []string) ([]string, error) {
	return MissingVPCs(ctx, s.clients(region).ec2, ids)
}

// Delete removes one load balancer using the client of its kind and region
func (s *Session) Delete(ctx context.Context, rec models.ResourceRecord) error {
	var err error
	switch rec.Kind {
	case models.SingleStage:
		err = s.Classic(rec.Region).Delete(ctx, rec.ID)
	case models.MultiStage:
		err = s.V2(rec.Region).Delete(ctx, rec.ID)
	default:
		return fmt.Errorf("unsupported load balancer kind %q", rec.Kind)
	}
	if err != nil {
		log.Warn().
			Str("account", s.account.Label()).
			Str("region", rec.Region).
			Str("lb", rec.ID).
			Str("code", ErrorCode(err)).
			Msg("delete call failed")
	}
	return err
}
