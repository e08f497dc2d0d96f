package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/rs/zerolog/log"

	"github.com/younsl/idlelb/internal/models"
)

// ELBV2Scanner lists, classifies and deletes ALBs and NLBs in one region
type ELBV2Scanner struct {
	ELBV2Client ELBV2API
	Metrics     *MetricClient
	Region      string
}

// NewELBV2Scanner creates an ELBV2Scanner for the region of cfg
func NewELBV2Scanner(cfg aws.Config, mc *MetricClient) *ELBV2Scanner {
	return &ELBV2Scanner{
		ELBV2Client: elbv2.NewFromConfig(cfg),
		Metrics:     mc,
		Region:      cfg.Region,
	}
}

// Kind implements the scanner source contract
func (s *ELBV2Scanner) Kind() models.LoadBalancerKind {
	return models.MultiStage
}

// List returns every v2 load balancer in the region, following NextMarker
func (s *ELBV2Scanner) List(ctx context.Context) ([]models.LoadBalancer, error) {
	var lbs []models.LoadBalancer

	paginator := elbv2.NewDescribeLoadBalancersPaginator(s.ELBV2Client, &elbv2.DescribeLoadBalancersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, tagExpired(fmt.Errorf("error describing v2 load balancers in %s: %w", s.Region, err))
		}

		for _, desc := range page.LoadBalancers {
			lbARN := aws.ToString(desc.LoadBalancerArn)
			lbs = append(lbs, models.LoadBalancer{
				ID:      lbARN,
				Name:    aws.ToString(desc.LoadBalancerName),
				Kind:    models.MultiStage,
				Region:  firstNonEmpty(RegionFromARN(lbARN), s.Region),
				VpcID:   aws.ToString(desc.VpcId),
				DNSName: aws.ToString(desc.DNSName),
			})
		}
	}

	return lbs, nil
}

// TargetGroups lists the target groups attached to a load balancer in listing order.
// One call is made; target groups beyond the first page are not considered.
func (s *ELBV2Scanner) TargetGroups(ctx context.Context, lbARN string) ([]models.TargetGroupRef, error) {
	out, err := s.ELBV2Client.DescribeTargetGroups(ctx, &elbv2.DescribeTargetGroupsInput{
		LoadBalancerArn: aws.String(lbARN),
	})
	if err != nil {
		return nil, tagExpired(fmt.Errorf("error describing target groups for %s: %w", lbARN, err))
	}

	refs := make([]models.TargetGroupRef, 0, len(out.TargetGroups))
	for _, tg := range out.TargetGroups {
		if tg.TargetGroupArn == nil {
			continue
		}
		tgARN := aws.ToString(tg.TargetGroupArn)
		refs = append(refs, models.TargetGroupRef{ARN: tgARN, ShortID: TargetGroupIDFromARN(tgARN)})
	}
	return refs, nil
}

// Classify walks the target groups and returns Active at the first one with
// healthy hosts. A failed target group listing and expired credentials are
// returned as errors.
func (s *ELBV2Scanner) Classify(ctx context.Context, lb models.LoadBalancer, days int) (models.ActivityState, error) {
	namespace, ok := NamespaceForARN(lb.ID)
	lbDimension, hasID := LoadBalancerIDFromARN(lb.ID)
	if !ok || !hasID {
		// gateway load balancers publish no HealthyHostCount we can use
		log.Debug().Str("lb", lb.ID).Msg("no CloudWatch namespace for load balancer type, skipping")
		return models.Inactive, nil
	}

	tgs, err := s.TargetGroups(ctx, lb.ID)
	if err != nil {
		return models.Inactive, err
	}

	for _, tg := range tgs {
		result, err := s.Metrics.GetMetricStats(ctx, Metric{
			Namespace: namespace,
			Name:      metricHealthyHostCount,
			Dimensions: []cwtypes.Dimension{
				dimension("LoadBalancer", lbDimension),
				dimension("TargetGroup", tg.ShortID),
			},
		}, days)
		if err != nil {
			return models.Inactive, err
		}
		if ClassifyResult(result) == models.Active {
			return models.Active, nil
		}
	}

	return models.Inactive, nil
}

// Delete removes a v2 load balancer by ARN
func (s *ELBV2Scanner) Delete(ctx context.Context, id string) error {
	_, err := s.ELBV2Client.DeleteLoadBalancer(ctx, &elbv2.DeleteLoadBalancerInput{
		LoadBalancerArn: aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete v2 load balancer %s: %w", id, err)
	}
	return nil
}
