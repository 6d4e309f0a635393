// Package analytics holds the pure loyalty and sales computations over visit
// snapshots. Nothing here touches storage.
package analytics

import (
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPoints is awarded when a payment amount cannot be read.
const DefaultPoints = 3

type pointsTier struct {
	upTo   decimal.Decimal
	points int
}

var pointsTiers = []pointsTier{
	{decimal.NewFromInt(50), 3},
	{decimal.NewFromInt(70), 5},
	{decimal.NewFromInt(100), 8},
	{decimal.NewFromInt(170), 10},
	{decimal.NewFromInt(200), 15},
}

const topTierPoints = 20

// CalculatePoints maps a gaming payment to loyalty points. Tier bounds are
// inclusive: 50 earns 3, 50.01 earns 5.
func CalculatePoints(amount decimal.Decimal) int {
	for _, tier := range pointsTiers {
		if amount.LessThanOrEqual(tier.upTo) {
			return tier.points
		}
	}
	return topTierPoints
}

// PointsFromText parses a raw amount before applying CalculatePoints.
// Unparseable input earns DefaultPoints.
func PointsFromText(raw string) int {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("[POINTS] could not read payment amount %q, using default points", raw)
		return DefaultPoints
	}
	return CalculatePoints(amount)
}
