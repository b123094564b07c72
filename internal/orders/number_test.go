package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	at := time.Date(2025, 3, 7, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "ORD-20250307-0001", FormatNumber(at, 1))
	assert.Equal(t, "ORD-20250307-0042", FormatNumber(at, 42))
	assert.Equal(t, "ORD-20250307-12345", FormatNumber(at, 12345)) // padding never truncates
}

func TestDayBounds(t *testing.T) {
	at := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	start, end := dayBounds(at)
	require.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)
	assert.False(t, at.Before(start))
	assert.True(t, at.Before(end))
}
