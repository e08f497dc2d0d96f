package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/rs/zerolog/log"
)

// FallbackRegion is used when neither the environment nor IMDS names a region
const FallbackRegion = "us-east-1"

const imdsTimeout = 2 * time.Second

// IMDSRegionAPI is the subset of the IMDS client used to look up the instance region
type IMDSRegionAPI interface {
	GetRegion(ctx context.Context, params *imds.GetRegionInput, optFns ...func(*imds.Options)) (*imds.GetRegionOutput, error)
}

// ResolveRegion returns the configured region of cfg, then the instance region
// from IMDS, then FallbackRegion
func ResolveRegion(ctx context.Context, cfg aws.Config) string {
	if cfg.Region != "" {
		return cfg.Region
	}
	return regionFromIMDS(ctx, imds.NewFromConfig(cfg))
}

func regionFromIMDS(ctx context.Context, client IMDSRegionAPI) string {
	ctx, cancel := context.WithTimeout(ctx, imdsTimeout)
	defer cancel()

	out, err := client.GetRegion(ctx, &imds.GetRegionInput{})
	if err != nil || out.Region == "" {
		log.Debug().Err(err).Str("fallback", FallbackRegion).Msg("no region from instance metadata")
		return FallbackRegion
	}
	return out.Region
}
