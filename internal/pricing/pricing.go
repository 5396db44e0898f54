// Package pricing holds the list prices and flat monthly estimates used by the
// waste rules, and the single fixed currency conversion applied to them.
//
// All estimates are flat USD placeholders; no pricing API is consulted.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultConversionRate converts USD list prices into the normalised currency.
const DefaultConversionRate = 0.92

// DefaultCurrency is the ISO code of the normalised currency.
const DefaultCurrency = "EUR"

// Flat per-resource monthly estimates in USD.
const (
	EC2StoppedCarryUSD     = 8.00  // ~100 GB of gp2 still attached to a stopped instance
	EC2OversizedUSD        = 35.00 // one size step down on a large/xlarge instance
	ElasticIPUSD           = 3.60  // $0.005/h for an idle public IPv4 address
	EBSPerGBUSD            = 0.08  // gp2/gp3 in most regions
	LambdaStaleUSD         = 0.50  // code storage + provisioned config
	DynamoDBProvisionedUSD = 12.00 // minimum provisioned RCU/WCU vs on-demand
	RDSStoppedUSD          = 15.00 // storage billed while stopped
	RDSMultiAZPremiumUSD   = 50.00 // standby replica premium
	S3InactiveBucketUSD    = 1.00
	LoadBalancerIdleUSD    = 16.20 // ALB hourly charge over 720h
)

// planPrices maps provider → plan name → per-seat monthly USD list price.
var planPrices = map[string]map[string]float64{
	"github": {
		"pro":        4,
		"team":       4,
		"enterprise": 21,
	},
	"vercel": {
		"pro":        20,
		"enterprise": 0, // negotiated; unknown
	},
	"sentry": {
		"team":     26,
		"business": 80,
	},
}

// PlanPriceUSD returns the monthly list price of plan at provider for the
// given number of seats. Unknown and free plans return 0.
func PlanPriceUSD(provider, plan string, seats int) float64 {
	prices, ok := planPrices[provider]
	if !ok {
		return 0
	}
	p := prices[strings.ToLower(strings.TrimSpace(plan))]
	if seats < 1 {
		seats = 1
	}
	return p * float64(seats)
}

// IsPaidPlan reports whether plan has a known non-zero list price.
func IsPaidPlan(provider, plan string) bool {
	return PlanPriceUSD(provider, plan, 1) > 0
}

// Converter applies the fixed conversion rate. The zero value uses
// DefaultConversionRate.
//
// Converted amounts are not rounded; rounding to cents happens only when
// amounts are displayed or summed into snapshots.
type Converter struct {
	Rate float64
}

func (c Converter) rate() decimal.Decimal {
	if c.Rate <= 0 {
		return decimal.NewFromFloat(DefaultConversionRate)
	}
	return decimal.NewFromFloat(c.Rate)
}

// Convert converts usd into the normalised currency.
func (c Converter) Convert(usd float64) float64 {
	v, _ := decimal.NewFromFloat(usd).Mul(c.rate()).Float64()
	return v
}

// ConvertMul converts count × unitUSD. The product is taken in decimal so
// that 3 × 3.6 converts exactly as 10.8.
func (c Converter) ConvertMul(count int, unitUSD float64) float64 {
	v, _ := decimal.NewFromFloat(unitUSD).Mul(decimal.NewFromInt(int64(count))).Mul(c.rate()).Float64()
	return v
}
