package pricing

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
)

// The AWS Pricing API is only available in us-east-1 and ap-south-1 regions
const pricingRegion = "us-east-1"

// API is the subset of the Pricing client used here
type API interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// NewClient creates a Pricing client in the pricing region, keeping the credentials of cfg
func NewClient(cfg aws.Config) *pricing.Client {
	cfg = cfg.Copy()
	cfg.Region = pricingRegion
	return pricing.NewFromConfig(cfg)
}

// getPricingProducts gets multiple pricing products from AWS API
func getPricingProducts(ctx context.Context, client API, serviceCode string, filters []types.Filter, region string) ([]string, error) {
	input := &pricing.GetProductsInput{
		ServiceCode: aws.String(serviceCode),
		Filters:     filters,
		MaxResults:  aws.Int32(100),
	}

	resp, err := client.GetProducts(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("error calling AWS Pricing API: %w", err)
	}

	if len(resp.PriceList) == 0 {
		return nil, fmt.Errorf("no pricing found for %s in region %s", serviceCode, region)
	}

	return resp.PriceList, nil
}
