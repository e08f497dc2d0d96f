package pricing

// PricingSource represents the source of pricing information
type PricingSource string

const (
	// PricingSourceAPI indicates pricing data came from AWS API
	PricingSourceAPI PricingSource = "API"

	// PricingSourceCache indicates pricing data came from cache
	PricingSourceCache PricingSource = "Cache"

	// PricingSourceDefault indicates pricing data came from hardcoded defaults
	PricingSourceDefault PricingSource = "Default"
)

// Product families of the AWSELB service code
const (
	familyClassic     = "Load Balancer"
	familyApplication = "Load Balancer-Application"
	familyNetwork     = "Load Balancer-Network"
)

// Default load balancer hourly prices in USD.
// These are fallback prices if Pricing API fails
var DefaultHourlyPrices = map[string]map[string]float64{
	"us-east-1": { // US East (N. Virginia)
		familyClassic:     0.025,
		familyApplication: 0.0225,
		familyNetwork:     0.0225,
	},
	"ap-northeast-2": { // Asia Pacific (Seoul)
		familyClassic:     0.028,
		familyApplication: 0.0225,
		familyNetwork:     0.0225,
	},
	// Add more regions as needed
}

// Stat counters tracked per service and region
const (
	statSuccess = "success"
	statFailure = "failure"
	statCache   = "cache"
)
