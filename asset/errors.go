/*
errors.go - Centralized error types for the asset engine

PURPOSE:
  All engine error kinds in one place. Callers branch on kind with
  errors.Is/errors.As rather than parsing message text.

ERROR CATEGORIES:
  1. Configuration errors - the asset is set up wrong; fix setup, never retry
  2. State errors - expected business conditions (already disposed, duplicate
     period); surfaced verbatim to the end user, not logged as faults
  3. Numeric errors - currency mismatch, invalid amounts; indicate a defect
     upstream and should be logged with full context

USAGE:
  if errors.Is(err, asset.ErrDuplicatePeriod) { ... }

  var dup *asset.DuplicatePeriodError
  if errors.As(err, &dup) { fmt.Println(dup.Period) }

SEE ALSO:
  - money/money.go: ErrCurrencyMismatch, ErrInvalidAmount
  - api/handlers.go: maps categories to HTTP status codes
*/
package asset

import (
	"errors"
	"fmt"
	"time"

	"github.com/warp/asset-engine/money"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAssetDisposed is returned by any mutating operation on a Disposed
	// asset. Disposed is terminal; the aggregate is read-only afterwards.
	ErrAssetDisposed = errors.New("asset is disposed")

	// ErrAlreadyDisposed is returned by disposal flows when the asset has
	// already been disposed. Disposal happens exactly once.
	ErrAlreadyDisposed = errors.New("asset already disposed")

	// ErrAlreadyFullyDepreciated is returned when accumulated depreciation
	// has reached costValue - salvageValue and another period is requested.
	ErrAlreadyFullyDepreciated = errors.New("asset is fully depreciated")

	// ErrDuplicatePeriod is returned when a depreciation record already
	// exists for the derived period key. A period is calculated at most once.
	ErrDuplicatePeriod = errors.New("depreciation period already recorded")

	// ErrMissingInServiceDate is returned when depreciation is requested
	// for an asset that was never placed in service.
	ErrMissingInServiceDate = errors.New("in-service date not set")

	// ErrInvalidDepreciationMethod is returned for unknown methods or
	// configuration that cannot produce a schedule (zero useful life,
	// zero expected units).
	ErrInvalidDepreciationMethod = errors.New("invalid depreciation configuration")

	// ErrZeroOrNegativeDepreciation is returned when the computed periodic
	// amount is <= 0. This signals a configuration problem; nothing is applied.
	ErrZeroOrNegativeDepreciation = errors.New("computed depreciation is zero or negative")

	// ErrUsageRequired is returned when UnitsOfProduction is computed
	// without a caller-supplied usage input.
	ErrUsageRequired = errors.New("units-of-production requires usage input")

	// ErrInvalidRevaluation is returned when the target net book value
	// would fall below the salvage floor.
	ErrInvalidRevaluation = errors.New("revaluation below salvage value")

	// ErrDisposalDateBeforeAcquisition is returned when a disposal is dated
	// before the asset was acquired.
	ErrDisposalDateBeforeAcquisition = errors.New("disposal date precedes acquisition date")

	// ErrSaleAmountRequired is returned by Sell when the sale amount is
	// missing or not positive.
	ErrSaleAmountRequired = errors.New("sale requires a positive sale amount")

	// ErrInvalidCostAddition is returned by AddToCost for non-positive amounts.
	ErrInvalidCostAddition = errors.New("cost addition must be positive")

	// ErrInvalidTransition is returned for lifecycle transitions the state
	// machine does not permit.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConfigurationConflict is returned when a configuration change would
	// retroactively violate the accumulated <= costValue - salvage invariant.
	ErrConfigurationConflict = errors.New("configuration conflicts with posted depreciation")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicatePeriodError reports which period key collided.
type DuplicatePeriodError struct {
	AssetID ID
	Period  string
}

func (e *DuplicatePeriodError) Error() string {
	return fmt.Sprintf("depreciation for period %s already recorded on asset %s", e.Period, e.AssetID)
}

func (e *DuplicatePeriodError) Unwrap() error { return ErrDuplicatePeriod }

// TransitionError reports a rejected lifecycle transition.
type TransitionError struct {
	AssetID ID
	From    Status
	To      Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition asset %s from %s to %s", e.AssetID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	if e.From == StatusDisposed {
		return ErrAssetDisposed
	}
	return ErrInvalidTransition
}

// RevaluationError reports the offending target value against the floor.
type RevaluationError struct {
	AssetID      ID
	Target       money.Amount
	SalvageFloor money.Amount
}

func (e *RevaluationError) Error() string {
	return fmt.Sprintf("revaluation of asset %s to %s is below salvage floor %s",
		e.AssetID, e.Target, e.SalvageFloor)
}

func (e *RevaluationError) Unwrap() error { return ErrInvalidRevaluation }

// DisposalDateError reports a disposal dated before acquisition.
type DisposalDateError struct {
	AssetID         ID
	DisposalDate    time.Time
	AcquisitionDate time.Time
}

func (e *DisposalDateError) Error() string {
	return fmt.Sprintf("disposal date %s precedes acquisition date %s for asset %s",
		e.DisposalDate.Format("2006-01-02"), e.AcquisitionDate.Format("2006-01-02"), e.AssetID)
}

func (e *DisposalDateError) Unwrap() error { return ErrDisposalDateBeforeAcquisition }

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsStateError reports whether the error is an expected business condition
// to surface to the end user rather than log as a fault.
func IsStateError(err error) bool {
	return errors.Is(err, ErrAssetDisposed) ||
		errors.Is(err, ErrAlreadyDisposed) ||
		errors.Is(err, ErrAlreadyFullyDepreciated) ||
		errors.Is(err, ErrDuplicatePeriod) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsConfigError reports whether the caller must fix asset setup before
// the operation can ever succeed.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingInServiceDate) ||
		errors.Is(err, ErrInvalidDepreciationMethod) ||
		errors.Is(err, ErrZeroOrNegativeDepreciation) ||
		errors.Is(err, ErrUsageRequired) ||
		errors.Is(err, ErrConfigurationConflict)
}

// IsNumericError reports a data-integrity defect upstream: fatal to the
// operation, logged with full context, but never crashes the process.
func IsNumericError(err error) bool {
	return errors.Is(err, money.ErrCurrencyMismatch) ||
		errors.Is(err, money.ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidRevaluation)
}
