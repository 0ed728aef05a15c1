/*
catalog.go - Category profiles and convenience constructors

PURPOSE:
  Maps each asset category to its chart-of-accounts group (250-268) and a
  sensible default configuration, and provides per-category constructors
  so callers creating common asset kinds do not repeat boilerplate.

  Land is the special case: it never depreciates. NewLand configures
  MethodNone and a zero useful life.
*/
package asset

import (
	"time"

	"github.com/warp/asset-engine/money"
)

// =============================================================================
// CHART OF ACCOUNTS - Category to account-group mapping
// =============================================================================

// AccountGroup returns the fixed-asset account group for a category.
// Tangible assets live in 250-258, intangibles in 260-268.
func AccountGroup(c Category) string {
	switch c {
	case CategoryLand:
		return "250"
	case CategoryLandImprovements:
		return "251"
	case CategoryBuildings:
		return "252"
	case CategoryMachineryEquipment:
		return "253"
	case CategoryVehicles:
		return "254"
	case CategoryFixtures:
		return "255"
	case CategoryOtherTangible:
		return "256"
	case CategoryIntangibleRights:
		return "260"
	case CategoryPatents:
		return "261"
	case CategoryGoodwill:
		return "262"
	case CategoryLeasehold:
		return "264"
	case CategorySoftware:
		return "267"
	case CategoryOtherIntangible:
		return "268"
	default:
		return "256"
	}
}

// CategoryType returns the asset type a category belongs to.
func CategoryType(c Category) Type {
	switch c {
	case CategoryLeasehold, CategoryIntangibleRights, CategoryPatents,
		CategoryGoodwill, CategorySoftware, CategoryOtherIntangible:
		return Intangible
	default:
		return Tangible
	}
}

// DefaultUsefulLifeYears returns the default schedule length for a
// category. Zero means the category does not depreciate.
func DefaultUsefulLifeYears(c Category) int {
	switch c {
	case CategoryLand:
		return 0
	case CategoryBuildings:
		return 50
	case CategoryLandImprovements:
		return 20
	case CategoryMachineryEquipment:
		return 10
	case CategoryVehicles:
		return 5
	case CategoryFixtures:
		return 5
	case CategoryLeasehold:
		return 5
	case CategorySoftware:
		return 3
	case CategoryPatents, CategoryIntangibleRights:
		return 10
	case CategoryGoodwill:
		return 10
	default:
		return 5
	}
}

// =============================================================================
// CONVENIENCE CONSTRUCTORS - Category defaults applied
// =============================================================================

// NewMachinery creates a machinery/equipment asset with straight-line
// depreciation over the category default life.
func NewMachinery(id ID, code, name string, acquired time.Time, cost money.Amount) (*FixedAsset, error) {
	return newWithDefaults(id, code, name, CategoryMachineryEquipment, acquired, cost)
}

// NewVehicle creates a vehicle asset.
func NewVehicle(id ID, code, name string, acquired time.Time, cost money.Amount) (*FixedAsset, error) {
	return newWithDefaults(id, code, name, CategoryVehicles, acquired, cost)
}

// NewBuilding creates a building asset.
func NewBuilding(id ID, code, name string, acquired time.Time, cost money.Amount) (*FixedAsset, error) {
	return newWithDefaults(id, code, name, CategoryBuildings, acquired, cost)
}

// NewFixture creates a furniture/fixtures asset.
func NewFixture(id ID, code, name string, acquired time.Time, cost money.Amount) (*FixedAsset, error) {
	return newWithDefaults(id, code, name, CategoryFixtures, acquired, cost)
}

// NewSoftware creates a software license asset.
func NewSoftware(id ID, code, name string, acquired time.Time, cost money.Amount) (*FixedAsset, error) {
	return newWithDefaults(id, code, name, CategorySoftware, acquired, cost)
}

// NewLand creates a land asset. Land carries value but never depreciates.
func NewLand(id ID, code, name string, acquired time.Time, cost money.Amount) (*FixedAsset, error) {
	return New(id, code, name, Tangible, CategoryLand, acquired, cost, 0, MethodNone)
}

func newWithDefaults(id ID, code, name string, c Category, acquired time.Time, cost money.Amount) (*FixedAsset, error) {
	return New(id, code, name, CategoryType(c), c, acquired, cost,
		DefaultUsefulLifeYears(c), StraightLine)
}
