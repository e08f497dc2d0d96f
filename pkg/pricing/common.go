package pricing

import (
	"fmt"
	"strconv"

	"github.com/younsl/idlelb/pkg/utils"
)

// GetRegionDescriptiveName returns the human-readable region name used in AWS Pricing API
func GetRegionDescriptiveName(region string) string {
	return utils.GetRegionDescriptiveName(region)
}

// ExtractOnDemandPrice extracts the on-demand price from the pricing data JSON
func ExtractOnDemandPrice(priceJSON string) (float64, error) {
	priceData, err := utils.ParseJSON(priceJSON)
	if err != nil {
		return 0, fmt.Errorf("error parsing pricing data: %w", err)
	}

	// The structure of the pricing data can be complex and may change
	terms, ok := priceData["terms"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("terms field not found or invalid")
	}

	onDemand, ok := terms["OnDemand"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("OnDemand field not found or invalid")
	}

	// Extract the first skuOffer
	skuOffer, err := utils.GetFirstMapValue(onDemand)
	if err != nil {
		return 0, fmt.Errorf("no SKU offer found")
	}

	skuOfferMap, ok := skuOffer.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("SKU offer is not a map")
	}

	priceDimensions, ok := skuOfferMap["priceDimensions"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("priceDimensions field not found or invalid")
	}

	dimension, err := utils.GetFirstMapValue(priceDimensions)
	if err != nil {
		return 0, fmt.Errorf("no price dimension found")
	}

	dimensionMap, ok := dimension.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("price dimension is not a map")
	}

	usd, err := utils.GetNestedString(dimensionMap, "pricePerUnit", "USD")
	if err != nil {
		return 0, fmt.Errorf("USD price not found or invalid: %w", err)
	}

	price, err := strconv.ParseFloat(usd, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing price: %w", err)
	}

	return price, nil
}

// usageType returns product.attributes.usagetype of a price list entry
func usageType(priceJSON string) string {
	priceData, err := utils.ParseJSON(priceJSON)
	if err != nil {
		return ""
	}
	usage, err := utils.GetNestedString(priceData, "product", "attributes", "usagetype")
	if err != nil {
		return ""
	}
	return usage
}
