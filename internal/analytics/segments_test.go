package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSegmentFor(t *testing.T) {
	cases := []struct {
		spent string
		want  string
	}{
		{"1500", SegmentVIP},
		{"1000", SegmentVIP},
		{"999.99", SegmentPremium},
		{"500", SegmentPremium},
		{"499.99", SegmentRegular},
		{"100", SegmentRegular},
		{"99.99", SegmentNew},
		{"0", SegmentNew},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SegmentFor(decimal.RequireFromString(c.spent)), "spent %s", c.spent)
	}
}

func TestBucketFormat(t *testing.T) {
	assert.Equal(t, "YYYY-MM-DD", bucketFormat(GroupByDay))
	assert.Equal(t, `IYYY-"W"IW`, bucketFormat(GroupByWeek))
	assert.Equal(t, "YYYY-MM", bucketFormat(GroupByMonth))
	assert.Equal(t, "YYYY-MM-DD", bucketFormat("quarter"))
}

func TestRangeNormalize(t *testing.T) {
	now := time.Date(2026, time.August, 28, 14, 30, 0, 0, time.UTC)

	r := Range{}.Normalize(now)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, 28, r.To.Day())
	assert.Equal(t, 23, r.To.Hour())

	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	r = Range{From: from, To: to}.Normalize(now)
	assert.Equal(t, from, r.From)
	assert.True(t, r.To.After(to), "To extends to end of day")
	assert.Equal(t, 31, r.To.Day())
}
