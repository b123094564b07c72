package orders

import (
	"fmt"
	"time"
)

// FormatNumber composes the human-readable order number for the given
// creation instant and daily sequence: ORD-YYYYMMDD-NNNN.
func FormatNumber(t time.Time, seq int) string {
	return fmt.Sprintf("ORD-%s-%04d", t.Format("20060102"), seq)
}

// dayBounds returns [start of day, start of next day) around t, in t's
// location. The order counter resets on this boundary.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
