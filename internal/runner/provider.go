package runner

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/younsl/idlelb/internal/metrics"
	"github.com/younsl/idlelb/internal/models"
	awsclient "github.com/younsl/idlelb/pkg/aws"
	"github.com/younsl/idlelb/pkg/scanner"
)

// AWSProvider backs account pipelines with real AWS clients
type AWSProvider struct {
	base    aws.Config
	broker  *awsclient.CredentialBroker
	metrics *metrics.Recorder
}

// NewAWSProvider creates a provider that assumes account roles from base
func NewAWSProvider(base aws.Config, sessionDuration time.Duration, rec *metrics.Recorder) *AWSProvider {
	return &AWSProvider{
		base:    base,
		broker:  awsclient.NewCredentialBroker(base, sessionDuration),
		metrics: rec,
	}
}

func (p *AWSProvider) Checkout(ctx context.Context, acct models.AccountConfig) (*models.AccountContext, error) {
	return p.broker.Checkout(ctx, acct)
}

func (p *AWSProvider) Ambient(ctx context.Context, regions, vpcIDs []string) *models.AccountContext {
	return p.broker.Ambient(ctx, regions, vpcIDs)
}

func (p *AWSProvider) Backend(account *models.AccountContext) Backend {
	return &sessionBackend{Session: awsclient.NewSession(p.base, account, p.metrics)}
}

// sessionBackend adapts an aws Session to the scanner interfaces
type sessionBackend struct {
	*awsclient.Session
}

func (b *sessionBackend) Source(region string, kind models.LoadBalancerKind) scanner.Source {
	if kind == models.MultiStage {
		return b.V2(region)
	}
	return b.Classic(region)
}
