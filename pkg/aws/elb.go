package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	elb "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"

	"github.com/younsl/idlelb/internal/models"
)

// ClassicELBScanner lists, classifies and deletes classic load balancers in one region
type ClassicELBScanner struct {
	ELBClient ClassicELBAPI
	Metrics   *MetricClient
	Region    string
}

// NewClassicELBScanner creates a ClassicELBScanner for the region of cfg
func NewClassicELBScanner(cfg aws.Config, mc *MetricClient) *ClassicELBScanner {
	return &ClassicELBScanner{
		ELBClient: elb.NewFromConfig(cfg),
		Metrics:   mc,
		Region:    cfg.Region,
	}
}

// Kind implements the scanner source contract
func (s *ClassicELBScanner) Kind() models.LoadBalancerKind {
	return models.SingleStage
}

// List returns every classic load balancer in the region, following NextMarker
func (s *ClassicELBScanner) List(ctx context.Context) ([]models.LoadBalancer, error) {
	var lbs []models.LoadBalancer

	paginator := elb.NewDescribeLoadBalancersPaginator(s.ELBClient, &elb.DescribeLoadBalancersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, tagExpired(fmt.Errorf("error describing classic load balancers in %s: %w", s.Region, err))
		}

		for _, desc := range page.LoadBalancerDescriptions {
			name := aws.ToString(desc.LoadBalancerName)
			dns := aws.ToString(desc.DNSName)
			lbs = append(lbs, models.LoadBalancer{
				ID:      name,
				Name:    name,
				Kind:    models.SingleStage,
				Region:  firstNonEmpty(RegionFromDNSName(dns), s.Region),
				VpcID:   aws.ToString(desc.VPCId),
				DNSName: dns,
			})
		}
	}

	return lbs, nil
}

// Classify queries HealthyHostCount for the load balancer. A failed query
// reads as no signal; only expired credentials are returned.
func (s *ClassicELBScanner) Classify(ctx context.Context, lb models.LoadBalancer, days int) (models.ActivityState, error) {
	result, err := s.Metrics.GetMetricStats(ctx, Metric{
		Namespace:  namespaceELB,
		Name:       metricHealthyHostCount,
		Dimensions: []cwtypes.Dimension{dimension("LoadBalancerName", NameFromIdentifier(lb.ID))},
	}, days)
	if err != nil {
		return models.Inactive, err
	}
	return ClassifyResult(result), nil
}

// Delete removes a classic load balancer by name
func (s *ClassicELBScanner) Delete(ctx context.Context, id string) error {
	_, err := s.ELBClient.DeleteLoadBalancer(ctx, &elb.DeleteLoadBalancerInput{
		LoadBalancerName: aws.String(NameFromIdentifier(id)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete classic load balancer %s: %w", id, err)
	}
	return nil
}
