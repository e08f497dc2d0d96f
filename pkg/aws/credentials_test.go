package aws

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younsl/idlelb/internal/models"
)

func TestSnapshotProvider_Expiry(t *testing.T) {
	expires := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := NewSnapshotProvider(models.Credentials{
		AccessKeyID:     "AKIA",
		SecretAccessKey: "secret",
		SessionToken:    "token",
		ExpiresAt:       expires,
	})

	p.now = func() time.Time { return expires.Add(-time.Second) }
	creds, err := p.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIA", creds.AccessKeyID)
	assert.True(t, creds.CanExpire)
	assert.Equal(t, expires, creds.Expires)

	p.now = func() time.Time { return expires }
	_, err = p.Retrieve(context.Background())
	assert.ErrorIs(t, err, ErrCredentialsExpired)
}

type countingHTTPClient struct {
	calls int
}

func (c *countingHTTPClient) Do(*http.Request) (*http.Response, error) {
	c.calls++
	return nil, errors.New("network disabled in tests")
}

func TestSnapshotProvider_ExpiredFailsAtAPIBoundary(t *testing.T) {
	httpClient := &countingHTTPClient{}
	cfg := aws.Config{
		Region:     "us-east-1",
		HTTPClient: httpClient,
		Retryer:    func() aws.Retryer { return aws.NopRetryer{} },
		Credentials: NewSnapshotProvider(models.Credentials{
			AccessKeyID:     "AKIA",
			SecretAccessKey: "secret",
			ExpiresAt:       time.Now().Add(-time.Minute),
		}),
	}

	_, err := elbv2.NewFromConfig(cfg).DescribeLoadBalancers(context.Background(), &elbv2.DescribeLoadBalancersInput{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCredentialsExpired)
	assert.Zero(t, httpClient.calls, "no request is sent with expired credentials")
}

func expiredConfig(httpClient *countingHTTPClient) aws.Config {
	return aws.Config{
		Region:     "us-east-1",
		HTTPClient: httpClient,
		Retryer:    func() aws.Retryer { return aws.NopRetryer{} },
		Credentials: NewSnapshotProvider(models.Credentials{
			AccessKeyID:     "AKIA",
			SecretAccessKey: "secret",
			ExpiresAt:       time.Now().Add(-time.Minute),
		}),
	}
}

func TestClassify_ExpiredCredentialsAreCredentialErrors(t *testing.T) {
	tests := []struct {
		name     string
		classify func(cfg aws.Config) (models.ActivityState, error)
	}{
		{
			name: "classic metric query",
			classify: func(cfg aws.Config) (models.ActivityState, error) {
				s := &ClassicELBScanner{Metrics: NewMetricClient(cloudwatch.NewFromConfig(cfg), nil), Region: "us-east-1"}
				return s.Classify(context.Background(), models.LoadBalancer{ID: "web"}, 45)
			},
		},
		{
			name: "v2 metric query",
			classify: func(cfg aws.Config) (models.ActivityState, error) {
				fake := &fakeELBV2{targetGroups: map[string][]string{albARN: {tgARN("tg1")}}}
				s := &ELBV2Scanner{ELBV2Client: fake, Metrics: NewMetricClient(cloudwatch.NewFromConfig(cfg), nil)}
				return s.Classify(context.Background(), models.LoadBalancer{ID: albARN}, 45)
			},
		},
		{
			name: "v2 target group listing",
			classify: func(cfg aws.Config) (models.ActivityState, error) {
				s := &ELBV2Scanner{ELBV2Client: elbv2.NewFromConfig(cfg), Metrics: NewMetricClient(cloudwatch.NewFromConfig(cfg), nil)}
				return s.Classify(context.Background(), models.LoadBalancer{ID: albARN}, 45)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpClient := &countingHTTPClient{}

			state, err := tt.classify(expiredConfig(httpClient))

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCredentialsExpired)
			assert.True(t, models.IsKind(err, models.KindCredential))
			assert.Equal(t, models.Inactive, state)
			assert.Zero(t, httpClient.calls)
		})
	}
}

func newTestBroker(stsClient *fakeSTS, iamClient *fakeIAM) *CredentialBroker {
	return &CredentialBroker{
		STSClient: stsClient,
		duration:  time.Hour,
		newIAM:    func(aws.Config) IAMAPI { return iamClient },
		now:       func() time.Time { return time.Unix(1700000000, 0) },
	}
}

func TestCheckout(t *testing.T) {
	expires := time.Unix(1700003600, 0)
	stsClient := &fakeSTS{assumeOut: &sts.AssumeRoleOutput{Credentials: &ststypes.Credentials{
		AccessKeyId:     aws.String("ASIA"),
		SecretAccessKey: aws.String("secret"),
		SessionToken:    aws.String("token"),
		Expiration:      aws.Time(expires),
	}}}
	broker := newTestBroker(stsClient, &fakeIAM{aliases: []string{"prod"}})

	account, err := broker.Checkout(context.Background(), models.AccountConfig{
		RoleARN: "arn:aws:iam::123456789012:role/idlelb",
		Regions: []string{"us-east-1"},
		VpcIDs:  []string{"vpc-a"},
	})

	require.NoError(t, err)
	assert.Equal(t, "123456789012", account.AccountID)
	assert.Equal(t, "prod", account.Alias)
	assert.Equal(t, "prod (123456789012)", account.Label())
	require.NotNil(t, account.Credentials)
	assert.Equal(t, "ASIA", account.Credentials.AccessKeyID)
	assert.Equal(t, expires, account.Credentials.ExpiresAt)
	assert.True(t, account.VPCFilter.Allows("vpc-a"))
	assert.False(t, account.VPCFilter.Allows("vpc-b"))

	assert.Equal(t, "idlelb-1700000000", aws.ToString(stsClient.assumeIn.RoleSessionName))
	assert.Equal(t, int32(3600), aws.ToInt32(stsClient.assumeIn.DurationSeconds))
}

func TestCheckout_AliasIsBestEffort(t *testing.T) {
	stsClient := &fakeSTS{assumeOut: &sts.AssumeRoleOutput{Credentials: &ststypes.Credentials{
		AccessKeyId: aws.String("ASIA"),
		Expiration:  aws.Time(time.Unix(1700003600, 0)),
	}}}
	broker := newTestBroker(stsClient, &fakeIAM{err: errors.New("access denied")})

	account, err := broker.Checkout(context.Background(), models.AccountConfig{RoleARN: "arn:aws:iam::123456789012:role/idlelb"})

	require.NoError(t, err)
	assert.Empty(t, account.Alias)
	assert.Equal(t, "123456789012", account.Label())
}

func TestCheckout_Failures(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		sts     *fakeSTS
		wantMsg string
	}{
		{
			name:    "invalid role arn",
			role:    "idlelb",
			sts:     &fakeSTS{},
			wantMsg: "invalid iam_role",
		},
		{
			name:    "assume role denied",
			role:    "arn:aws:iam::123456789012:role/idlelb",
			sts:     &fakeSTS{assumeErr: errors.New("AccessDenied")},
			wantMsg: "failed to assume role",
		},
		{
			name:    "no credentials returned",
			role:    "arn:aws:iam::123456789012:role/idlelb",
			sts:     &fakeSTS{assumeOut: &sts.AssumeRoleOutput{}},
			wantMsg: "returned no credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broker := newTestBroker(tt.sts, &fakeIAM{})

			_, err := broker.Checkout(context.Background(), models.AccountConfig{RoleARN: tt.role})

			require.Error(t, err)
			assert.True(t, models.IsKind(err, models.KindCredential))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestAmbient(t *testing.T) {
	broker := newTestBroker(&fakeSTS{account: "999999999999"}, &fakeIAM{})

	account := broker.Ambient(context.Background(), []string{"us-east-1"}, nil)

	assert.Equal(t, "999999999999", account.AccountID)
	assert.Nil(t, account.Credentials)
	assert.False(t, account.VPCFilter.Enabled())

	unknown := newTestBroker(&fakeSTS{}, &fakeIAM{}).Ambient(context.Background(), []string{"us-east-1"}, nil)
	assert.Equal(t, "default", unknown.Label())
}

func TestMissingVPCs(t *testing.T) {
	client := &fakeEC2{existing: []string{"vpc-a", "vpc-c"}}

	missing, err := MissingVPCs(context.Background(), client, []string{"vpc-a", "vpc-b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"vpc-b"}, missing)

	missing, err = MissingVPCs(context.Background(), client, nil)
	require.NoError(t, err)
	assert.Empty(t, missing)

	_, err = MissingVPCs(context.Background(), &fakeEC2{err: errors.New("denied")}, []string{"vpc-a"})
	assert.Error(t, err)
}

func TestReportUploader(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "123_inactive_elbs.csv")
	require.NoError(t, os.WriteFile(file, []byte("name,state,region,vpc_id\n"), 0o600))

	fake := &fakeS3{}
	u := &ReportUploader{S3Client: fake, Bucket: "reports", Prefix: "idlelb/nightly"}

	uri, err := u.Upload(context.Background(), file)

	require.NoError(t, err)
	assert.Equal(t, "s3://reports/idlelb/nightly/123_inactive_elbs.csv", uri)
	require.Len(t, fake.inputs, 1)
	assert.Equal(t, "idlelb/nightly/123_inactive_elbs.csv", aws.ToString(fake.inputs[0].Key))
	assert.Equal(t, "name,state,region,vpc_id\n", fake.bodies[0])
}

type fakeIMDS struct {
	region string
	err    error
}

func (f *fakeIMDS) GetRegion(ctx context.Context, params *imds.GetRegionInput, optFns ...func(*imds.Options)) (*imds.GetRegionOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &imds.GetRegionOutput{Region: f.region}, nil
}

func TestRegionResolution(t *testing.T) {
	assert.Equal(t, "eu-central-1", ResolveRegion(context.Background(), aws.Config{Region: "eu-central-1"}))
	assert.Equal(t, "ap-south-1", regionFromIMDS(context.Background(), &fakeIMDS{region: "ap-south-1"}))
	assert.Equal(t, FallbackRegion, regionFromIMDS(context.Background(), &fakeIMDS{err: errors.New("no imds")}))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
	assert.Equal(t, "AccessDenied", ErrorCode(&smithy.GenericAPIError{Code: "AccessDenied", Message: "nope"}))
}
