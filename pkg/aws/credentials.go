package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/younsl/idlelb/internal/models"
)

// ErrCredentialsExpired is returned by SnapshotProvider once the snapshot is past its expiry
var ErrCredentialsExpired = errors.New("account credentials expired")

const credentialSource = "idlelb-assume-role"

// SnapshotProvider serves one immutable credential snapshot and refuses to
// serve it after ExpiresAt. There is no renewal.
type SnapshotProvider struct {
	creds models.Credentials
	now   func() time.Time
}

// NewSnapshotProvider wraps a credential snapshot as an aws.CredentialsProvider
func NewSnapshotProvider(creds models.Credentials) *SnapshotProvider {
	return &SnapshotProvider{creds: creds, now: time.Now}
}

// Retrieve implements aws.CredentialsProvider
func (p *SnapshotProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	if p.creds.Expired(p.now()) {
		return aws.Credentials{}, fmt.Errorf("%w at %s", ErrCredentialsExpired, p.creds.ExpiresAt.Format(time.RFC3339))
	}
	return aws.Credentials{
		AccessKeyID:     p.creds.AccessKeyID,
		SecretAccessKey: p.creds.SecretAccessKey,
		SessionToken:    p.creds.SessionToken,
		Source:          credentialSource,
		CanExpire:       !p.creds.ExpiresAt.IsZero(),
		Expires:         p.creds.ExpiresAt,
	}, nil
}

// CredentialBroker mints one credential snapshot per account
type CredentialBroker struct {
	STSClient STSAPI
	base      aws.Config
	duration  time.Duration
	newIAM    func(aws.Config) IAMAPI
	now       func() time.Time
}

// NewCredentialBroker creates a broker that assumes roles with the base config's identity
func NewCredentialBroker(base aws.Config, duration time.Duration) *CredentialBroker {
	return &CredentialBroker{
		STSClient: sts.NewFromConfig(base),
		base:      base,
		duration:  duration,
		newIAM: func(cfg aws.Config) IAMAPI {
			return iam.NewFromConfig(cfg)
		},
		now: time.Now,
	}
}

// Checkout assumes the account role and returns the account context holding the snapshot.
// Any failure is a credential error for this account only.
func (b *CredentialBroker) Checkout(ctx context.Context, acct models.AccountConfig) (*models.AccountContext, error) {
	accountID, err := AccountFromARN(acct.RoleARN)
	if err != nil {
		return nil, models.NewCredentialError(acct.RoleARN, fmt.Errorf("invalid iam_role: %w", err))
	}

	sessionName := fmt.Sprintf("idlelb-%d", b.now().Unix())
	out, err := b.STSClient.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(acct.RoleARN),
		RoleSessionName: aws.String(sessionName),
		DurationSeconds: aws.Int32(int32(b.duration.Seconds())),
	})
	if err != nil {
		return nil, models.NewCredentialError(accountID, fmt.Errorf("failed to assume role %s: %w", acct.RoleARN, err))
	}
	if out.Credentials == nil {
		return nil, models.NewCredentialError(accountID, fmt.Errorf("assume role %s returned no credentials", acct.RoleARN))
	}

	creds := &models.Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		ExpiresAt:       aws.ToTime(out.Credentials.Expiration),
	}

	account := &models.AccountContext{
		AccountID:   accountID,
		RoleARN:     acct.RoleARN,
		Credentials: creds,
		Regions:     acct.Regions,
		VPCFilter:   models.NewVPCFilter(acct.VpcIDs),
	}
	account.Alias = b.lookupAlias(ctx, account)

	log.Info().
		Str("account", account.Label()).
		Str("session", sessionName).
		Str("expires", humanize.Time(creds.ExpiresAt)).
		Msg("assumed account role")

	return account, nil
}

// Ambient returns the context for account-less mode, using the default credential chain
func (b *CredentialBroker) Ambient(ctx context.Context, regions, vpcIDs []string) *models.AccountContext {
	account := &models.AccountContext{
		Regions:   regions,
		VPCFilter: models.NewVPCFilter(vpcIDs),
	}

	out, err := b.STSClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		log.Warn().Err(err).Msg("could not identify the current account")
		return account
	}
	account.AccountID = aws.ToString(out.Account)
	account.Alias = b.lookupAlias(ctx, account)
	return account
}

// lookupAlias is best-effort; a missing alias only affects display
func (b *CredentialBroker) lookupAlias(ctx context.Context, account *models.AccountContext) string {
	cfg := b.base.Copy()
	if account.Credentials != nil {
		cfg.Credentials = NewSnapshotProvider(*account.Credentials)
	}

	out, err := b.newIAM(cfg).ListAccountAliases(ctx, &iam.ListAccountAliasesInput{})
	if err != nil {
		log.Debug().Err(err).Str("account", account.AccountID).Msg("account alias lookup failed")
		return ""
	}
	if len(out.AccountAliases) == 0 {
		return ""
	}
	return out.AccountAliases[0]
}
