/*
Package asset provides the fixed-asset valuation and depreciation engine.

PURPOSE:
  This package tracks a capital asset's cost basis over its lifetime,
  computes periodic depreciation under several accounting methods, applies
  cost additions and revaluations, and finalizes value on disposal.

KEY CONCEPTS IN THIS FILE (types.go):
  - Method/PeriodGranularity/Status/DisposalType: closed enumerations
  - DepreciationRecord: one computed period, keyed by a canonical period key
  - DisposalOutcome: the realized result of a terminal disposal
  - Usage: caller-supplied metering input for units-of-production

DESIGN PRINCIPLES:
  1. The aggregate (FixedAsset) exposes only operations that validate then
     mutate; there are no raw setters that could break invariants
  2. Every operation returns a typed error the caller can branch on
     (see errors.go) instead of a formatted string
  3. All date-dependent behavior is parameterized by an as-of date;
     the engine never reads the wall clock for period math

SEE ALSO:
  - asset.go: the FixedAsset aggregate and its invariants
  - depreciation.go: per-period computation and atomic application
  - disposal.go, revaluation.go: terminal and non-terminal transitions
*/
package asset

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/asset-engine/money"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ID is the opaque asset identifier.
type ID string

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Type distinguishes tangible from intangible assets.
type Type string

const (
	Tangible   Type = "tangible"
	Intangible Type = "intangible"
)

// Category classifies an asset within the chart of accounts.
// See catalog.go for the category -> account-group mapping.
type Category string

const (
	CategoryLand               Category = "land"
	CategoryLandImprovements   Category = "land_improvements"
	CategoryBuildings          Category = "buildings"
	CategoryMachineryEquipment Category = "machinery_equipment"
	CategoryVehicles           Category = "vehicles"
	CategoryFixtures           Category = "fixtures"
	CategoryOtherTangible      Category = "other_tangible"
	CategoryLeasehold          Category = "leasehold"
	CategoryIntangibleRights   Category = "intangible_rights"
	CategoryPatents            Category = "patents"
	CategoryGoodwill           Category = "goodwill"
	CategorySoftware           Category = "software"
	CategoryOtherIntangible    Category = "other_intangible"
)

// =============================================================================
// DEPRECIATION CONFIGURATION
// =============================================================================

// Method selects the depreciation algorithm.
type Method string

const (
	StraightLine           Method = "straight_line"
	DecliningBalance       Method = "declining_balance"
	DoubleDecliningBalance Method = "double_declining_balance"
	SumOfYearsDigits       Method = "sum_of_years_digits"
	UnitsOfProduction      Method = "units_of_production"
	MethodNone             Method = "none"
)

// ValidMethod reports whether m is a known method.
func ValidMethod(m Method) bool {
	switch m {
	case StraightLine, DecliningBalance, DoubleDecliningBalance,
		SumOfYearsDigits, UnitsOfProduction, MethodNone:
		return true
	}
	return false
}

// PeriodGranularity is how often depreciation is posted.
type PeriodGranularity string

const (
	Monthly   PeriodGranularity = "monthly"
	Quarterly PeriodGranularity = "quarterly"
	Annually  PeriodGranularity = "annually"
)

// PeriodsPerYear returns how many posting periods fit in one year.
func (g PeriodGranularity) PeriodsPerYear() int64 {
	switch g {
	case Monthly:
		return 12
	case Quarterly:
		return 4
	default:
		return 1
	}
}

// Usage is the caller-supplied metering input for UnitsOfProduction.
// The engine does not track usage itself; each period's consumed units
// arrive from an external feed.
type Usage struct {
	Units decimal.Decimal
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Status is the asset lifecycle state.
type Status string

const (
	StatusAcquired         Status = "acquired"
	StatusInService        Status = "in_service"
	StatusUnderMaintenance Status = "under_maintenance"
	StatusOutOfService     Status = "out_of_service"
	StatusDisposed         Status = "disposed"
	StatusLost             Status = "lost"
)

// DisposalType names how an asset left the books.
type DisposalType string

const (
	DisposalSale           DisposalType = "sale"
	DisposalScrap          DisposalType = "scrap"
	DisposalTransfer       DisposalType = "transfer"
	DisposalDonation       DisposalType = "donation"
	DisposalLostStolen     DisposalType = "lost_stolen"
	DisposalInsuranceClaim DisposalType = "insurance_claim"
)

// =============================================================================
// DEPRECIATION RECORD - One computed period
// =============================================================================

// DepreciationRecord captures one period's depreciation. Records are
// created by ComputePeriod (preview, no side effect) and appended to the
// aggregate only by ApplyPeriod. Period keys are unique per asset.
//
// IsPosted stays false until the external journal-posting step flips it;
// the engine itself never posts to the accounting ledger.
type DepreciationRecord struct {
	Period                     string
	PeriodStart                time.Time
	PeriodEnd                  time.Time
	DepreciationAmount         money.Amount
	AccumulatedDepreciationAfter money.Amount
	NetBookValueAfter          money.Amount
	IsPosted                   bool
	CalculationDate            time.Time
}

// MarkPosted flips the posted flag once the external ledger has accepted
// the journal entry. It is the only mutation a record supports.
func (r *DepreciationRecord) MarkPosted() { r.IsPosted = true }

// =============================================================================
// DISPOSAL OUTCOME - Populated only on Disposed assets
// =============================================================================

// DisposalOutcome is the realized result of a disposal. GainLoss is
// positive for a gain, negative for a loss, exactly zero for transfers.
type DisposalOutcome struct {
	Type       DisposalType
	Date       time.Time
	SaleAmount *money.Amount
	GainLoss   money.Amount
	Reason     string
	Buyer      string
	InvoiceRef string
}

// =============================================================================
// REVALUATION - Latest adjustment only; full history is external
// =============================================================================

// Revaluation records the most recent revaluation applied to the asset.
type Revaluation struct {
	Amount money.Amount // signed delta applied to cost value
	Date   time.Time
	Reason string
}

// RevaluationResult is returned by Revalue for the caller to persist.
type RevaluationResult struct {
	RevaluationAmount money.Amount
	NewCostValue      money.Amount
	NewNetBookValue   money.Amount
	Date              time.Time
}

// =============================================================================
// COST ADDITIONS - Capitalized improvements
// =============================================================================

// CostAddition is one capitalized addition to the cost basis.
type CostAddition struct {
	Amount      money.Amount
	Description string
	Date        time.Time
}
