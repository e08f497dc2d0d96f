package aws

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	elb "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// fakeCloudWatch answers queries by the value of one dimension
type fakeCloudWatch struct {
	mu       sync.Mutex
	key      string               // dimension name used to look up values
	values   map[string][]float64 // dimension value -> datapoints
	failFor  map[string]bool
	empty    bool
	requests []*cloudwatch.GetMetricDataInput
}

func (f *fakeCloudWatch) GetMetricData(ctx context.Context, params *cloudwatch.GetMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error) {
	f.mu.Lock()
	f.requests = append(f.requests, params)
	f.mu.Unlock()

	dims := dimensionMap(params.MetricDataQueries[0].MetricStat.Metric.Dimensions)
	value := dims[f.key]
	if f.failFor[value] {
		return nil, errors.New("throttled")
	}
	if f.empty {
		return &cloudwatch.GetMetricDataOutput{}, nil
	}
	return &cloudwatch.GetMetricDataOutput{
		MetricDataResults: []cwtypes.MetricDataResult{
			{Id: aws.String("m1"), Values: f.values[value]},
		},
	}, nil
}

func (f *fakeCloudWatch) queriedValues() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		out = append(out, dimensionMap(r.MetricDataQueries[0].MetricStat.Metric.Dimensions)[f.key])
	}
	return out
}

type fakeClassicELB struct {
	pages    []*elb.DescribeLoadBalancersOutput
	pageErr  map[int]error
	markers  []*string
	deleted  []string
	deleteFn func(name string) error
}

func (f *fakeClassicELB) DescribeLoadBalancers(ctx context.Context, params *elb.DescribeLoadBalancersInput, optFns ...func(*elb.Options)) (*elb.DescribeLoadBalancersOutput, error) {
	call := len(f.markers)
	f.markers = append(f.markers, params.Marker)
	if err := f.pageErr[call]; err != nil {
		return nil, err
	}
	return f.pages[call], nil
}

func (f *fakeClassicELB) DeleteLoadBalancer(ctx context.Context, params *elb.DeleteLoadBalancerInput, optFns ...func(*elb.Options)) (*elb.DeleteLoadBalancerOutput, error) {
	name := aws.ToString(params.LoadBalancerName)
	f.deleted = append(f.deleted, name)
	if f.deleteFn != nil {
		if err := f.deleteFn(name); err != nil {
			return nil, err
		}
	}
	return &elb.DeleteLoadBalancerOutput{}, nil
}

type fakeELBV2 struct {
	pages        []*elbv2.DescribeLoadBalancersOutput
	markers      []*string
	targetGroups map[string][]string // lb ARN -> target group ARNs
	tgErr        error
	tgCalls      int
	deleted      []string
}

func (f *fakeELBV2) DescribeLoadBalancers(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
	call := len(f.markers)
	f.markers = append(f.markers, params.Marker)
	return f.pages[call], nil
}

func (f *fakeELBV2) DescribeTargetGroups(ctx context.Context, params *elbv2.DescribeTargetGroupsInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetGroupsOutput, error) {
	f.tgCalls++
	if f.tgErr != nil {
		return nil, f.tgErr
	}
	out := &elbv2.DescribeTargetGroupsOutput{}
	for _, arn := range f.targetGroups[aws.ToString(params.LoadBalancerArn)] {
		out.TargetGroups = append(out.TargetGroups, elbv2TargetGroup(arn))
	}
	return out, nil
}

func (f *fakeELBV2) DeleteLoadBalancer(ctx context.Context, params *elbv2.DeleteLoadBalancerInput, optFns ...func(*elbv2.Options)) (*elbv2.DeleteLoadBalancerOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.LoadBalancerArn))
	return &elbv2.DeleteLoadBalancerOutput{}, nil
}

type fakeSTS struct {
	assumeOut *sts.AssumeRoleOutput
	assumeErr error
	assumeIn  *sts.AssumeRoleInput
	account   string
}

func (f *fakeSTS) AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	f.assumeIn = params
	return f.assumeOut, f.assumeErr
}

func (f *fakeSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.account == "" {
		return nil, errors.New("no identity")
	}
	return &sts.GetCallerIdentityOutput{Account: aws.String(f.account)}, nil
}

type fakeIAM struct {
	aliases []string
	err     error
}

func (f *fakeIAM) ListAccountAliases(ctx context.Context, params *iam.ListAccountAliasesInput, optFns ...func(*iam.Options)) (*iam.ListAccountAliasesOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &iam.ListAccountAliasesOutput{AccountAliases: f.aliases}, nil
}

type fakeEC2 struct {
	existing []string
	err      error
}

func (f *fakeEC2) DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := map[string]bool{}
	for _, filter := range params.Filters {
		for _, v := range filter.Values {
			want[v] = true
		}
	}
	out := &ec2.DescribeVpcsOutput{}
	for _, id := range f.existing {
		if want[id] {
			out.Vpcs = append(out.Vpcs, ec2Vpc(id))
		}
	}
	return out, nil
}

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies []string
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.inputs = append(f.inputs, params)
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}
