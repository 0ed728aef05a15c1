/*
asset.go - The FixedAsset aggregate

PURPOSE:
  FixedAsset is the mutable aggregate at the center of the engine. It owns
  the cost basis, the depreciation state, and the lifecycle status, and it
  enforces the engine invariants on every mutation:

    1. netBookValue == costValue - accumulatedDepreciation, exactly
    2. 0 <= accumulatedDepreciation <= costValue - salvageValue
    3. depreciation record period keys are unique per asset
    4. Disposed is terminal: no depreciation, revaluation, cost addition
       or status change afterwards
    5. every monetary field shares the asset's single lifetime currency

  There are no raw setters. Every public operation validates first and
  either fully applies or fully rejects its effect.

CONCURRENCY:
  One FixedAsset instance is owned by its caller for the duration of one
  operation. The caller serializes access per asset id (row lock or
  optimistic token in the persistence layer); the aggregate itself holds
  no locks and performs no I/O.

SEE ALSO:
  - depreciation.go: ComputePeriod / ApplyPeriod
  - disposal.go: terminal transitions
  - revaluation.go: cost-basis adjustment
  - snapshot.go: persistence-facing state transfer
*/
package asset

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/asset-engine/money"
)

// FixedAsset is the asset aggregate. Construct via New or a catalog
// constructor; restore persisted state via FromSnapshot.
type FixedAsset struct {
	id           ID
	code         string
	name         string
	description  string
	subCategory  string
	serialNumber string
	location     string
	custodian    string

	assetType    Type
	category     Category
	accountGroup string

	acquisitionDate time.Time
	inServiceDate   *time.Time
	warrantyEnd     *time.Time

	currency        string
	acquisitionCost money.Amount
	costValue       money.Amount
	salvageValue    money.Amount
	accumulated     money.Amount
	netBookValue    money.Amount

	method             Method
	usefulLifeYears    int
	customRate         *decimal.Decimal
	granularity        PeriodGranularity
	prorate            bool
	totalExpectedUnits decimal.Decimal

	depreciationStart *time.Time
	lastDepreciation  *time.Time
	records           []DepreciationRecord

	status          Status
	disposal        *DisposalOutcome
	lastRevaluation *Revaluation
	additions       []CostAddition
}

// New creates an asset in the Acquired state. The cost basis is fixed at
// acquisition: costValue starts equal to acquisitionCost, salvage at zero,
// and the currency is locked for the asset's lifetime.
func New(id ID, code, name string, assetType Type, category Category,
	acquisitionDate time.Time, acquisitionCost money.Amount,
	usefulLifeYears int, method Method) (*FixedAsset, error) {

	if !ValidMethod(method) {
		return nil, fmt.Errorf("%w: unknown method %q", ErrInvalidDepreciationMethod, method)
	}
	if method != MethodNone && usefulLifeYears <= 0 {
		return nil, fmt.Errorf("%w: useful life must be positive", ErrInvalidDepreciationMethod)
	}
	if acquisitionCost.IsNegative() {
		return nil, fmt.Errorf("%w: acquisition cost is negative", money.ErrInvalidAmount)
	}

	cur := acquisitionCost.Currency()
	return &FixedAsset{
		id:              id,
		code:            code,
		name:            name,
		assetType:       assetType,
		category:        category,
		accountGroup:    AccountGroup(category),
		acquisitionDate: midnightUTC(acquisitionDate),
		currency:        cur,
		acquisitionCost: acquisitionCost,
		costValue:       acquisitionCost,
		salvageValue:    money.Zero(cur),
		accumulated:     money.Zero(cur),
		netBookValue:    acquisitionCost,
		method:          method,
		usefulLifeYears: usefulLifeYears,
		granularity:     Monthly,
		prorate:         true,
		status:          StatusAcquired,
	}, nil
}

// =============================================================================
// READ ACCESS
// =============================================================================

func (a *FixedAsset) ID() ID                   { return a.id }
func (a *FixedAsset) Code() string             { return a.code }
func (a *FixedAsset) Name() string             { return a.name }
func (a *FixedAsset) Description() string      { return a.description }
func (a *FixedAsset) SubCategory() string      { return a.subCategory }
func (a *FixedAsset) SerialNumber() string     { return a.serialNumber }
func (a *FixedAsset) Location() string         { return a.location }
func (a *FixedAsset) Custodian() string        { return a.custodian }
func (a *FixedAsset) AssetType() Type          { return a.assetType }
func (a *FixedAsset) Category() Category       { return a.category }
func (a *FixedAsset) ChartAccountGroup() string { return a.accountGroup }
func (a *FixedAsset) Currency() string         { return a.currency }
func (a *FixedAsset) Status() Status           { return a.status }

func (a *FixedAsset) AcquisitionDate() time.Time { return a.acquisitionDate }
func (a *FixedAsset) InServiceDate() *time.Time  { return copyTime(a.inServiceDate) }
func (a *FixedAsset) WarrantyEnd() *time.Time    { return copyTime(a.warrantyEnd) }

func (a *FixedAsset) AcquisitionCost() money.Amount         { return a.acquisitionCost }
func (a *FixedAsset) CostValue() money.Amount               { return a.costValue }
func (a *FixedAsset) SalvageValue() money.Amount            { return a.salvageValue }
func (a *FixedAsset) AccumulatedDepreciation() money.Amount { return a.accumulated }
func (a *FixedAsset) NetBookValue() money.Amount            { return a.netBookValue }

func (a *FixedAsset) DepreciationMethod() Method             { return a.method }
func (a *FixedAsset) UsefulLifeYears() int                   { return a.usefulLifeYears }
func (a *FixedAsset) UsefulLifeMonths() int                  { return a.usefulLifeYears * 12 }
func (a *FixedAsset) Granularity() PeriodGranularity         { return a.granularity }
func (a *FixedAsset) ProratesPartialYear() bool              { return a.prorate }
func (a *FixedAsset) TotalExpectedUnits() decimal.Decimal    { return a.totalExpectedUnits }
func (a *FixedAsset) DepreciationStartDate() *time.Time      { return copyTime(a.depreciationStart) }
func (a *FixedAsset) LastDepreciationDate() *time.Time       { return copyTime(a.lastDepreciation) }
func (a *FixedAsset) Disposal() *DisposalOutcome             { return a.disposal }
func (a *FixedAsset) LastRevaluation() *Revaluation          { return a.lastRevaluation }

// CustomRate returns the configured annual rate override, or nil.
func (a *FixedAsset) CustomRate() *decimal.Decimal {
	if a.customRate == nil {
		return nil
	}
	r := *a.customRate
	return &r
}

// DepreciableAmount is costValue - salvageValue: the total the asset can
// ever depreciate.
func (a *FixedAsset) DepreciableAmount() money.Amount {
	d, _ := a.costValue.Sub(a.salvageValue) // same currency by invariant 5
	return d
}

// RemainingDepreciable is DepreciableAmount - accumulated.
func (a *FixedAsset) RemainingDepreciable() money.Amount {
	r, _ := a.DepreciableAmount().Sub(a.accumulated)
	return r
}

// IsFullyDepreciated reports whether accumulated depreciation has reached
// the depreciable amount. Non-depreciating assets (method None) report
// fully depreciated immediately.
func (a *FixedAsset) IsFullyDepreciated() bool {
	if a.method == MethodNone {
		return true
	}
	return !a.RemainingDepreciable().IsPositive()
}

// Records returns a copy of the posted depreciation records, ordered as
// applied.
func (a *FixedAsset) Records() []DepreciationRecord {
	out := make([]DepreciationRecord, len(a.records))
	copy(out, a.records)
	return out
}

// RecordForPeriod returns the record with the given period key, if any.
func (a *FixedAsset) RecordForPeriod(period string) *DepreciationRecord {
	for i := range a.records {
		if a.records[i].Period == period {
			r := a.records[i]
			return &r
		}
	}
	return nil
}

// CostAdditions returns a copy of the capitalized additions.
func (a *FixedAsset) CostAdditions() []CostAddition {
	out := make([]CostAddition, len(a.additions))
	copy(out, a.additions)
	return out
}

// HasPostedRecords reports whether any depreciation record has been
// handed to the external journal-posting step.
func (a *FixedAsset) HasPostedRecords() bool {
	for i := range a.records {
		if a.records[i].IsPosted {
			return true
		}
	}
	return false
}

// =============================================================================
// DESCRIPTIVE FIELDS - No invariant interaction
// =============================================================================

func (a *FixedAsset) SetDescription(d string)  { a.description = d }
func (a *FixedAsset) SetSubCategory(s string)  { a.subCategory = s }
func (a *FixedAsset) SetSerialNumber(s string) { a.serialNumber = s }
func (a *FixedAsset) SetLocation(l string)     { a.location = l }
func (a *FixedAsset) SetCustodian(c string)    { a.custodian = c }

// SetWarrantyEnd records the warranty expiry; purely informational.
func (a *FixedAsset) SetWarrantyEnd(t *time.Time) { a.warrantyEnd = copyTime(t) }

// =============================================================================
// CONFIGURATION - Validated setters
// =============================================================================

// SetSalvageValue sets the depreciation floor. Rejected when the asset is
// disposed, the currency differs, the value is negative, or the change
// would leave accumulated depreciation above the new depreciable amount.
func (a *FixedAsset) SetSalvageValue(v money.Amount) error {
	if err := a.mutable(); err != nil {
		return err
	}
	if v.Currency() != a.currency {
		return &money.MismatchError{Left: a.currency, Right: v.Currency()}
	}
	if v.IsNegative() {
		return fmt.Errorf("%w: salvage value is negative", money.ErrInvalidAmount)
	}
	newDepreciable, err := a.costValue.Sub(v)
	if err != nil {
		return err
	}
	if over, _ := a.accumulated.GreaterThan(newDepreciable); over {
		return fmt.Errorf("%w: accumulated %s exceeds new depreciable %s",
			ErrConfigurationConflict, a.accumulated, newDepreciable)
	}
	a.salvageValue = v
	return nil
}

// SetDepreciationMethod reconfigures the schedule. Changing method or
// useful life after postings is permitted; the already-accumulated total
// stands and future periods follow the new configuration.
func (a *FixedAsset) SetDepreciationMethod(m Method, usefulLifeYears int, customRate *decimal.Decimal) error {
	if err := a.mutable(); err != nil {
		return err
	}
	if !ValidMethod(m) {
		return fmt.Errorf("%w: unknown method %q", ErrInvalidDepreciationMethod, m)
	}
	if m != MethodNone && usefulLifeYears <= 0 {
		return fmt.Errorf("%w: useful life must be positive", ErrInvalidDepreciationMethod)
	}
	if customRate != nil && !customRate.IsPositive() {
		return fmt.Errorf("%w: custom rate must be positive", ErrInvalidDepreciationMethod)
	}
	a.method = m
	a.usefulLifeYears = usefulLifeYears
	if customRate != nil {
		r := *customRate
		a.customRate = &r
	} else {
		a.customRate = nil
	}
	return nil
}

// SetDepreciationPeriod changes the posting granularity for future periods.
func (a *FixedAsset) SetDepreciationPeriod(g PeriodGranularity) error {
	if err := a.mutable(); err != nil {
		return err
	}
	switch g {
	case Monthly, Quarterly, Annually:
		a.granularity = g
		return nil
	default:
		return fmt.Errorf("%w: unknown granularity %q", ErrInvalidDepreciationMethod, g)
	}
}

// SetPartialYearProration toggles first-period day proration.
func (a *FixedAsset) SetPartialYearProration(on bool) error {
	if err := a.mutable(); err != nil {
		return err
	}
	a.prorate = on
	return nil
}

// SetTotalExpectedUnits configures the lifetime production capacity for
// the units-of-production method.
func (a *FixedAsset) SetTotalExpectedUnits(units decimal.Decimal) error {
	if err := a.mutable(); err != nil {
		return err
	}
	if !units.IsPositive() {
		return fmt.Errorf("%w: expected units must be positive", ErrInvalidDepreciationMethod)
	}
	a.totalExpectedUnits = units
	return nil
}

// =============================================================================
// COST OPERATIONS
// =============================================================================

// AddToCost capitalizes an improvement or addition into the cost basis.
// Net book value is recomputed so invariant 1 holds.
func (a *FixedAsset) AddToCost(amount money.Amount, description string, date time.Time) error {
	if err := a.mutable(); err != nil {
		return err
	}
	if amount.Currency() != a.currency {
		return &money.MismatchError{Left: a.currency, Right: amount.Currency()}
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidCostAddition, amount)
	}
	newCost, err := a.costValue.Add(amount)
	if err != nil {
		return err
	}
	a.costValue = newCost
	a.recalcNetBookValue()
	a.additions = append(a.additions, CostAddition{
		Amount:      amount,
		Description: description,
		Date:        midnightUTC(date),
	})
	return nil
}

// =============================================================================
// LIFECYCLE STATE MACHINE
// =============================================================================
//
//   Acquired ----> InService <----> UnderMaintenance
//      |              |
//      +--- any non-Disposed state ---> OutOfService | Lost
//      +--- any non-Disposed state ---> Disposed (disposal.go only)
//
// Disposed is terminal.

// PlaceInService moves an Acquired asset into service and starts the
// depreciation clock.
func (a *FixedAsset) PlaceInService(date time.Time) error {
	if a.status == StatusDisposed {
		return &TransitionError{AssetID: a.id, From: a.status, To: StatusInService}
	}
	if a.status != StatusAcquired && a.status != StatusOutOfService {
		return &TransitionError{AssetID: a.id, From: a.status, To: StatusInService}
	}
	d := midnightUTC(date)
	a.inServiceDate = &d
	if a.depreciationStart == nil {
		a.depreciationStart = &d
	}
	a.status = StatusInService
	return nil
}

// MarkUnderMaintenance takes an in-service asset down for maintenance.
func (a *FixedAsset) MarkUnderMaintenance() error {
	if a.status != StatusInService {
		return &TransitionError{AssetID: a.id, From: a.status, To: StatusUnderMaintenance}
	}
	a.status = StatusUnderMaintenance
	return nil
}

// ReturnFromMaintenance puts a maintained asset back in service.
func (a *FixedAsset) ReturnFromMaintenance() error {
	if a.status != StatusUnderMaintenance {
		return &TransitionError{AssetID: a.id, From: a.status, To: StatusInService}
	}
	a.status = StatusInService
	return nil
}

// MarkOutOfService is an administrative transition with no numeric effect.
func (a *FixedAsset) MarkOutOfService() error {
	if a.status == StatusDisposed {
		return &TransitionError{AssetID: a.id, From: a.status, To: StatusOutOfService}
	}
	a.status = StatusOutOfService
	return nil
}

// MarkLost is an administrative transition with no numeric effect.
func (a *FixedAsset) MarkLost() error {
	if a.status == StatusDisposed {
		return &TransitionError{AssetID: a.id, From: a.status, To: StatusLost}
	}
	a.status = StatusLost
	return nil
}

// =============================================================================
// INVARIANT CHECK
// =============================================================================

// Validate re-checks the aggregate invariants. Mutating operations keep
// them by construction; stores call this after restoring a snapshot.
func (a *FixedAsset) Validate() error {
	nbv, err := a.costValue.Sub(a.accumulated)
	if err != nil {
		return err
	}
	if !a.netBookValue.Equal(nbv) {
		return fmt.Errorf("net book value %s != cost %s - accumulated %s",
			a.netBookValue, a.costValue, a.accumulated)
	}
	if a.accumulated.IsNegative() {
		return fmt.Errorf("accumulated depreciation %s is negative", a.accumulated)
	}
	if over, err := a.accumulated.GreaterThan(a.DepreciableAmount()); err != nil {
		return err
	} else if over {
		return fmt.Errorf("accumulated %s exceeds depreciable %s", a.accumulated, a.DepreciableAmount())
	}
	seen := make(map[string]bool, len(a.records))
	for i := range a.records {
		if seen[a.records[i].Period] {
			return &DuplicatePeriodError{AssetID: a.id, Period: a.records[i].Period}
		}
		seen[a.records[i].Period] = true
	}
	return nil
}

// =============================================================================
// INTERNAL
// =============================================================================

// mutable rejects every mutation on a disposed asset.
func (a *FixedAsset) mutable() error {
	if a.status == StatusDisposed {
		return ErrAssetDisposed
	}
	return nil
}

func (a *FixedAsset) recalcNetBookValue() {
	a.netBookValue, _ = a.costValue.Sub(a.accumulated)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
