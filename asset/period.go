package asset

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD KEYS - Canonical identifier for one posting period
// =============================================================================

// PeriodKey derives the canonical key for the period containing asOf:
//
//	Monthly   -> "2024-03"
//	Quarterly -> "2024-Q1"
//	Annually  -> "2024"
//
// Keys guarantee at-most-one posting per period per asset.
func PeriodKey(asOf time.Time, g PeriodGranularity) string {
	switch g {
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", asOf.Year(), (int(asOf.Month())-1)/3+1)
	case Annually:
		return fmt.Sprintf("%d", asOf.Year())
	default:
		return asOf.Format("2006-01")
	}
}

// PeriodBounds returns the calendar start and end (inclusive) of the
// period containing asOf. Bounds are midnight UTC dates; proration uses
// whole days within these bounds.
func PeriodBounds(asOf time.Time, g PeriodGranularity) (time.Time, time.Time) {
	y := asOf.Year()
	switch g {
	case Quarterly:
		q := (int(asOf.Month()) - 1) / 3
		start := time.Date(y, time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 3, -1)
		return start, end
	case Annually:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		start := time.Date(y, asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		return start, end
	}
}

// daysInclusive counts whole days in [from, to], both endpoints included.
func daysInclusive(from, to time.Time) int {
	from = midnightUTC(from)
	to = midnightUTC(to)
	return int(to.Sub(from).Hours()/24) + 1
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
