/*
snapshot.go - Persistence-facing state transfer for the aggregate

PURPOSE:
  FixedAsset keeps its fields unexported so every mutation flows through
  a validating operation. Stores still need the full state in and out:
  Snapshot() exports it, FromSnapshot() rebuilds the aggregate and
  re-checks the invariants so a corrupted row can never become a live
  asset that silently violates them.
*/
package asset

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/asset-engine/money"
)

// Snapshot is the complete externalized state of a FixedAsset. It is a
// plain data carrier for stores and DTOs; it enforces nothing itself.
type Snapshot struct {
	ID           ID
	Code         string
	Name         string
	Description  string
	SubCategory  string
	SerialNumber string
	Location     string
	Custodian    string

	AssetType    Type
	Category     Category
	AccountGroup string

	AcquisitionDate time.Time
	InServiceDate   *time.Time
	WarrantyEnd     *time.Time

	Currency                string
	AcquisitionCost         money.Amount
	CostValue               money.Amount
	SalvageValue            money.Amount
	AccumulatedDepreciation money.Amount
	NetBookValue            money.Amount

	Method               Method
	UsefulLifeYears      int
	CustomRate           *decimal.Decimal
	Granularity          PeriodGranularity
	PartialYearProration bool
	TotalExpectedUnits   decimal.Decimal

	DepreciationStartDate *time.Time
	LastDepreciationDate  *time.Time
	Records               []DepreciationRecord

	Status          Status
	Disposal        *DisposalOutcome
	LastRevaluation *Revaluation
	CostAdditions   []CostAddition
}

// Snapshot exports the full aggregate state.
func (a *FixedAsset) Snapshot() Snapshot {
	return Snapshot{
		ID:           a.id,
		Code:         a.code,
		Name:         a.name,
		Description:  a.description,
		SubCategory:  a.subCategory,
		SerialNumber: a.serialNumber,
		Location:     a.location,
		Custodian:    a.custodian,

		AssetType:    a.assetType,
		Category:     a.category,
		AccountGroup: a.accountGroup,

		AcquisitionDate: a.acquisitionDate,
		InServiceDate:   copyTime(a.inServiceDate),
		WarrantyEnd:     copyTime(a.warrantyEnd),

		Currency:                a.currency,
		AcquisitionCost:         a.acquisitionCost,
		CostValue:               a.costValue,
		SalvageValue:            a.salvageValue,
		AccumulatedDepreciation: a.accumulated,
		NetBookValue:            a.netBookValue,

		Method:               a.method,
		UsefulLifeYears:      a.usefulLifeYears,
		CustomRate:           a.CustomRate(),
		Granularity:          a.granularity,
		PartialYearProration: a.prorate,
		TotalExpectedUnits:   a.totalExpectedUnits,

		DepreciationStartDate: copyTime(a.depreciationStart),
		LastDepreciationDate:  copyTime(a.lastDepreciation),
		Records:               a.Records(),

		Status:          a.status,
		Disposal:        a.disposal,
		LastRevaluation: a.lastRevaluation,
		CostAdditions:   a.CostAdditions(),
	}
}

// FromSnapshot rebuilds an aggregate from stored state and re-validates
// the invariants. A snapshot that fails validation never becomes a live
// asset.
func FromSnapshot(s Snapshot) (*FixedAsset, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("snapshot missing asset id")
	}
	if !ValidMethod(s.Method) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDepreciationMethod, s.Method)
	}

	records := make([]DepreciationRecord, len(s.Records))
	copy(records, s.Records)
	additions := make([]CostAddition, len(s.CostAdditions))
	copy(additions, s.CostAdditions)

	a := &FixedAsset{
		id:           s.ID,
		code:         s.Code,
		name:         s.Name,
		description:  s.Description,
		subCategory:  s.SubCategory,
		serialNumber: s.SerialNumber,
		location:     s.Location,
		custodian:    s.Custodian,

		assetType:    s.AssetType,
		category:     s.Category,
		accountGroup: s.AccountGroup,

		acquisitionDate: s.AcquisitionDate,
		inServiceDate:   copyTime(s.InServiceDate),
		warrantyEnd:     copyTime(s.WarrantyEnd),

		currency:        s.Currency,
		acquisitionCost: s.AcquisitionCost,
		costValue:       s.CostValue,
		salvageValue:    s.SalvageValue,
		accumulated:     s.AccumulatedDepreciation,
		netBookValue:    s.NetBookValue,

		method:             s.Method,
		usefulLifeYears:    s.UsefulLifeYears,
		granularity:        s.Granularity,
		prorate:            s.PartialYearProration,
		totalExpectedUnits: s.TotalExpectedUnits,

		depreciationStart: copyTime(s.DepreciationStartDate),
		lastDepreciation:  copyTime(s.LastDepreciationDate),
		records:           records,

		status:          s.Status,
		disposal:        s.Disposal,
		lastRevaluation: s.LastRevaluation,
		additions:       additions,
	}
	if s.CustomRate != nil {
		r := *s.CustomRate
		a.customRate = &r
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot for asset %s: %w", s.ID, err)
	}
	return a, nil
}
