/*
depreciation.go - Per-period depreciation computation and application

PURPOSE:
  ComputePeriod derives one period's depreciation for an asset without
  touching it (preview). ApplyPeriod runs the same computation and then
  commits the result atomically: either the record, the accumulated total
  and the net book value all advance together, or nothing changes.

ALGORITHMS:
  straight_line            depreciable / (years * periodsPerYear)
  declining_balance        NBV * rate / periodsPerYear   (rate = custom or 1/years)
  double_declining_balance NBV * 2*rate / periodsPerYear (rate = custom or 1/years)
  sum_of_years_digits      depreciable * remainingYears/SYD / periodsPerYear
  units_of_production      usage.Units * depreciable/totalExpectedUnits
  none                     always already fully depreciated

  Every computed amount is rounded to accounting precision and clamped so
  accumulated depreciation never exceeds costValue - salvageValue. The
  final period absorbs rounding drift through the clamp, which is what
  guarantees the schedule terminates exactly at the salvage floor.

PRORATION:
  When the depreciation start date falls inside the computed period and
  proration is enabled, time-based amounts scale by the fraction of days
  the asset was actually in service. Units-of-production is measured by
  actual usage and never prorates.
*/
package asset

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/asset-engine/money"
)

// ComputePeriod previews the depreciation record for the period containing
// asOf. The asset is not modified. usage is required for UnitsOfProduction
// and ignored by every other method.
func ComputePeriod(a *FixedAsset, asOf time.Time, usage *Usage) (DepreciationRecord, error) {
	if a.status == StatusDisposed {
		return DepreciationRecord{}, ErrAssetDisposed
	}
	if a.method == MethodNone {
		// Non-depreciating assets have an exhausted schedule from day one.
		return DepreciationRecord{}, ErrAlreadyFullyDepreciated
	}
	if a.depreciationStart == nil {
		return DepreciationRecord{}, ErrMissingInServiceDate
	}

	period := PeriodKey(asOf, a.granularity)
	start, end := PeriodBounds(asOf, a.granularity)

	if end.Before(*a.depreciationStart) {
		return DepreciationRecord{}, fmt.Errorf("%w: period %s ends before depreciation start %s",
			ErrInvalidDepreciationMethod, period, a.depreciationStart.Format("2006-01-02"))
	}
	if a.RecordForPeriod(period) != nil {
		return DepreciationRecord{}, &DuplicatePeriodError{AssetID: a.id, Period: period}
	}
	if a.IsFullyDepreciated() {
		return DepreciationRecord{}, ErrAlreadyFullyDepreciated
	}

	amount, err := a.periodicAmount(start, usage)
	if err != nil {
		return DepreciationRecord{}, err
	}

	if a.prorate && a.method != UnitsOfProduction && a.depreciationStart.After(start) {
		inService := decimal.NewFromInt(int64(daysInclusive(*a.depreciationStart, end)))
		total := decimal.NewFromInt(int64(daysInclusive(start, end)))
		amount = amount.ScaleByRatio(inService.Div(total))
	}

	amount = amount.Round()
	if !amount.IsPositive() {
		return DepreciationRecord{}, fmt.Errorf("%w: %s for period %s",
			ErrZeroOrNegativeDepreciation, amount, period)
	}

	// Clamp to the salvage floor. The last period of a schedule is almost
	// always clamped; that is how rounding drift is absorbed.
	amount = amount.Min(a.RemainingDepreciable())

	accumulatedAfter, err := a.accumulated.Add(amount)
	if err != nil {
		return DepreciationRecord{}, err
	}
	nbvAfter, err := a.costValue.Sub(accumulatedAfter)
	if err != nil {
		return DepreciationRecord{}, err
	}

	return DepreciationRecord{
		Period:                       period,
		PeriodStart:                  start,
		PeriodEnd:                    end,
		DepreciationAmount:           amount,
		AccumulatedDepreciationAfter: accumulatedAfter,
		NetBookValueAfter:            nbvAfter,
		CalculationDate:              time.Now().UTC(),
	}, nil
}

// ApplyPeriod computes the period containing asOf and commits it to the
// asset: the record is appended, accumulated depreciation and net book
// value advance, and the last-depreciation date moves to the period end.
// On any error the asset is untouched.
func (a *FixedAsset) ApplyPeriod(asOf time.Time, usage *Usage) (DepreciationRecord, error) {
	rec, err := ComputePeriod(a, asOf, usage)
	if err != nil {
		return DepreciationRecord{}, err
	}
	a.records = append(a.records, rec)
	a.accumulated = rec.AccumulatedDepreciationAfter
	a.netBookValue = rec.NetBookValueAfter
	end := rec.PeriodEnd
	a.lastDepreciation = &end
	return rec, nil
}

// MarkPeriodPosted flips the posted flag on the record with the given
// period key once the external journal entry has been accepted.
func (a *FixedAsset) MarkPeriodPosted(period string) error {
	for i := range a.records {
		if a.records[i].Period == period {
			a.records[i].MarkPosted()
			return nil
		}
	}
	return fmt.Errorf("no depreciation record for period %s on asset %s", period, a.id)
}

// =============================================================================
// PER-METHOD AMOUNTS - Unrounded, pre-proration
// =============================================================================

// periodicAmount computes the raw amount for one period starting at
// periodStart, before proration, rounding and clamping.
func (a *FixedAsset) periodicAmount(periodStart time.Time, usage *Usage) (money.Amount, error) {
	perYear := decimal.NewFromInt(a.granularity.PeriodsPerYear())

	switch a.method {
	case StraightLine:
		if a.customRate != nil {
			annual := a.DepreciableAmount().ScaleByRatio(*a.customRate)
			return annual.ScaleByRatio(decimal.NewFromInt(1).Div(perYear)), nil
		}
		periods := decimal.NewFromInt(int64(a.usefulLifeYears)).Mul(perYear)
		return a.DepreciableAmount().ScaleByRatio(decimal.NewFromInt(1).Div(periods)), nil

	case DecliningBalance:
		rate := decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(a.usefulLifeYears)))
		if a.customRate != nil {
			rate = *a.customRate
		}
		return a.netBookValue.ScaleByRatio(rate.Div(perYear)), nil

	case DoubleDecliningBalance:
		rate := decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(a.usefulLifeYears)))
		if a.customRate != nil {
			rate = a.customRate.Mul(decimal.NewFromInt(2))
		}
		return a.netBookValue.ScaleByRatio(rate.Div(perYear)), nil

	case SumOfYearsDigits:
		n := int64(a.usefulLifeYears)
		yearIdx := a.scheduleYear(periodStart)
		remaining := n - int64(yearIdx) + 1
		if remaining < 1 {
			remaining = 1 // past nominal life; the clamp finishes the schedule
		}
		syd := decimal.NewFromInt(n * (n + 1) / 2)
		fraction := decimal.NewFromInt(remaining).Div(syd)
		annual := a.DepreciableAmount().ScaleByRatio(fraction)
		return annual.ScaleByRatio(decimal.NewFromInt(1).Div(perYear)), nil

	case UnitsOfProduction:
		if usage == nil {
			return money.Amount{}, ErrUsageRequired
		}
		if !usage.Units.IsPositive() {
			return money.Amount{}, fmt.Errorf("%w: got %s units", ErrUsageRequired, usage.Units)
		}
		if !a.totalExpectedUnits.IsPositive() {
			return money.Amount{}, fmt.Errorf("%w: total expected units not configured",
				ErrInvalidDepreciationMethod)
		}
		perUnit := a.DepreciableAmount().ScaleByRatio(
			decimal.NewFromInt(1).Div(a.totalExpectedUnits))
		return perUnit.ScaleByRatio(usage.Units), nil

	default:
		return money.Amount{}, fmt.Errorf("%w: %q", ErrInvalidDepreciationMethod, a.method)
	}
}

// scheduleYear returns the 1-based year of the schedule the given period
// start falls in, measured from the depreciation start date anniversary.
func (a *FixedAsset) scheduleYear(periodStart time.Time) int {
	start := *a.depreciationStart
	if periodStart.Before(start) {
		return 1
	}
	y := periodStart.Year() - start.Year()
	if start.AddDate(y, 0, 0).After(periodStart) {
		y--
	}
	return y + 1
}
