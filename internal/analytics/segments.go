package analytics

import "github.com/shopspring/decimal"

// Spend tiers for customer segmentation, in major currency units.
var (
	tierVIP     = decimal.NewFromInt(1000)
	tierPremium = decimal.NewFromInt(500)
	tierRegular = decimal.NewFromInt(100)
)

const (
	SegmentVIP     = "VIP"
	SegmentPremium = "Premium"
	SegmentRegular = "Regular"
	SegmentNew     = "New"
)

func SegmentFor(spent decimal.Decimal) string {
	switch {
	case spent.GreaterThanOrEqual(tierVIP):
		return SegmentVIP
	case spent.GreaterThanOrEqual(tierPremium):
		return SegmentPremium
	case spent.GreaterThanOrEqual(tierRegular):
		return SegmentRegular
	default:
		return SegmentNew
	}
}

type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

// bucketFormat is the to_char pattern for a grouping granularity.
// Unknown values degrade to daily, matching the lenient query surface.
func bucketFormat(g GroupBy) string {
	switch g {
	case GroupByWeek:
		return `IYYY-"W"IW`
	case GroupByMonth:
		return "YYYY-MM"
	default:
		return "YYYY-MM-DD"
	}
}
