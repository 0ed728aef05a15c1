/*
revaluation.go - Cost-basis adjustment to an appraised net book value

PURPOSE:
  Revalue moves the asset's net book value to an externally appraised
  target. The delta is absorbed into costValue so that the identity
  netBookValue == costValue - accumulatedDepreciation keeps holding with
  the accumulated total untouched; future depreciation sees the adjusted
  basis through DepreciableAmount.
*/
package asset

import (
	"fmt"
	"time"

	"github.com/warp/asset-engine/money"
)

// Revalue adjusts the asset to the target net book value as of date. The
// target must sit on or above the salvage floor; a target equal to the
// current net book value is rejected as a no-op.
func (a *FixedAsset) Revalue(target money.Amount, date time.Time, reason string) (*RevaluationResult, error) {
	if err := a.mutable(); err != nil {
		return nil, err
	}
	if target.Currency() != a.currency {
		return nil, &money.MismatchError{Left: a.currency, Right: target.Currency()}
	}
	if below, err := target.LessThan(a.salvageValue); err != nil {
		return nil, err
	} else if below {
		return nil, &RevaluationError{AssetID: a.id, Target: target, SalvageFloor: a.salvageValue}
	}

	delta, err := target.Sub(a.netBookValue)
	if err != nil {
		return nil, err
	}
	if delta.IsZero() {
		return nil, fmt.Errorf("%w: target equals current net book value %s",
			ErrInvalidRevaluation, a.netBookValue)
	}

	newCost, err := a.costValue.Add(delta)
	if err != nil {
		return nil, err
	}
	a.costValue = newCost
	a.recalcNetBookValue()

	d := midnightUTC(date)
	a.lastRevaluation = &Revaluation{Amount: delta, Date: d, Reason: reason}

	return &RevaluationResult{
		RevaluationAmount: delta,
		NewCostValue:      a.costValue,
		NewNetBookValue:   a.netBookValue,
		Date:              d,
	}, nil
}
