package pricing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/rs/zerolog/log"

	"github.com/younsl/idlelb/internal/models"
	"github.com/younsl/idlelb/pkg/utils"
)

const (
	serviceCodeELB = "AWSELB"
	usageSuffix    = "LoadBalancerUsage"
	apiTimeout     = 5 * time.Second
)

// Estimator prices load balancers by their hourly charge. Prices are cached
// per product family and region.
type Estimator struct {
	client API

	cacheLock sync.RWMutex
	cache     map[string]float64

	statsLock sync.RWMutex
	stats     map[string]map[string]map[string]int // service -> region -> {success, failure, cache}
}

// NewEstimator creates an Estimator. A nil client always uses default prices.
func NewEstimator(client API) *Estimator {
	return &Estimator{
		client: client,
		cache:  make(map[string]float64),
		stats:  make(map[string]map[string]map[string]int),
	}
}

// productFamily maps a record to its AWSELB product family
func productFamily(rec models.ResourceRecord) string {
	if rec.Kind == models.SingleStage {
		return familyClassic
	}
	if strings.Contains(rec.ID, "loadbalancer/net/") {
		return familyNetwork
	}
	return familyApplication
}

func serviceLabel(family string) string {
	switch family {
	case familyApplication:
		return "ALB"
	case familyNetwork:
		return "NLB"
	default:
		return "CLB"
	}
}

// HourlyPriceWithSource returns the hourly price of a product family in a region and where it came from
func (e *Estimator) HourlyPriceWithSource(ctx context.Context, family, region string) (float64, PricingSource) {
	cacheKey := fmt.Sprintf("%s:%s", region, family)
	service := serviceLabel(family)

	e.cacheLock.RLock()
	if price, exists := e.cache[cacheKey]; exists {
		e.cacheLock.RUnlock()
		e.updateStats(service, region, statCache)
		return price, PricingSourceCache
	}
	e.cacheLock.RUnlock()

	if e.client != nil {
		price, err := e.priceFromAPI(ctx, family, region)
		if err == nil {
			e.updateStats(service, region, statSuccess)

			e.cacheLock.Lock()
			e.cache[cacheKey] = price
			e.cacheLock.Unlock()

			return price, PricingSourceAPI
		}
		log.Debug().Err(err).Str("family", family).Str("region", region).Msg("pricing API lookup failed, using default price")
	}

	e.updateStats(service, region, statFailure)
	return defaultHourlyPrice(family, region), PricingSourceDefault
}

func defaultHourlyPrice(family, region string) float64 {
	if prices, ok := DefaultHourlyPrices[region]; ok {
		return prices[family]
	}
	return DefaultHourlyPrices["us-east-1"][family]
}

func (e *Estimator) priceFromAPI(ctx context.Context, family, region string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	filters := []types.Filter{
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("location"),
			Value: aws.String(GetRegionDescriptiveName(region)),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("productFamily"),
			Value: aws.String(family),
		},
	}

	products, err := getPricingProducts(ctx, e.client, serviceCodeELB, filters, region)
	if err != nil {
		return 0, err
	}

	// capacity unit charges share the product family; only the hourly usage counts
	for _, p := range products {
		if strings.HasSuffix(usageType(p), usageSuffix) {
			return ExtractOnDemandPrice(p)
		}
	}
	return 0, fmt.Errorf("no %s product for %s in %s", usageSuffix, family, region)
}

// Annotate sets MonthlyCost on every record
func (e *Estimator) Annotate(ctx context.Context, records []models.ResourceRecord) {
	for i := range records {
		hourly, _ := e.HourlyPriceWithSource(ctx, productFamily(records[i]), records[i].Region)
		monthly := hourly * utils.GetMonthlyHours()
		records[i].MonthlyCost = &monthly
	}
}

// updateStats updates the tracking statistics for Pricing API calls
func (e *Estimator) updateStats(service, region, statType string) {
	e.statsLock.Lock()
	defer e.statsLock.Unlock()

	if _, exists := e.stats[service]; !exists {
		e.stats[service] = make(map[string]map[string]int)
	}
	if _, exists := e.stats[service][region]; !exists {
		e.stats[service][region] = map[string]int{
			statSuccess: 0,
			statFailure: 0,
			statCache:   0,
		}
	}
	e.stats[service][region][statType]++
}
