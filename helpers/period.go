package helpers

import "time"

const periodNoLayout = "200601021504"

// FormatPeriodNo derives the period number from its open time, minute
// resolution. Lexicographic order matches chronological order.
func FormatPeriodNo(t time.Time) string {
	return t.UTC().Format(periodNoLayout)
}
