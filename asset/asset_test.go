package asset_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/asset-engine/asset"
	"github.com/warp/asset-engine/money"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var acquired = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

// newMachine returns a 120k USD straight-line machine over 5 years with
// 20k salvage, in service from Feb 1 2024.
func newMachine(t *testing.T) *asset.FixedAsset {
	t.Helper()
	a, err := asset.New("asset-1", "MCH-001", "Hydraulic Press",
		asset.Tangible, asset.CategoryMachineryEquipment,
		acquired, money.MustParse("120000.00", "USD"), 5, asset.StraightLine)
	require.NoError(t, err)
	require.NoError(t, a.SetSalvageValue(money.MustParse("20000.00", "USD")))
	require.NoError(t, a.PlaceInService(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))
	return a
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNew_StartsAcquiredWithFullBookValue(t *testing.T) {
	a, err := asset.New("a1", "C-1", "Thing", asset.Tangible,
		asset.CategoryMachineryEquipment, acquired,
		money.MustParse("1000.00", "USD"), 5, asset.StraightLine)
	require.NoError(t, err)

	assert.Equal(t, asset.StatusAcquired, a.Status())
	assert.Equal(t, "USD", a.Currency())
	assert.True(t, a.CostValue().Equal(a.AcquisitionCost()))
	assert.True(t, a.NetBookValue().Equal(a.CostValue()))
	assert.True(t, a.AccumulatedDepreciation().IsZero())
	assert.True(t, a.SalvageValue().IsZero())
	assert.Equal(t, "253", a.ChartAccountGroup())
	assert.NoError(t, a.Validate())
}

func TestNew_UnknownMethod_Rejected(t *testing.T) {
	_, err := asset.New("a1", "C-1", "Thing", asset.Tangible,
		asset.CategoryMachineryEquipment, acquired,
		money.MustParse("1000", "USD"), 5, asset.Method("exotic"))
	assert.ErrorIs(t, err, asset.ErrInvalidDepreciationMethod)
}

func TestNew_ZeroLife_RejectedUnlessMethodNone(t *testing.T) {
	_, err := asset.New("a1", "C-1", "Thing", asset.Tangible,
		asset.CategoryMachineryEquipment, acquired,
		money.MustParse("1000", "USD"), 0, asset.StraightLine)
	assert.ErrorIs(t, err, asset.ErrInvalidDepreciationMethod)

	// Land never depreciates; zero life is the point.
	land, err := asset.NewLand("a2", "LND-1", "Plot", acquired, money.MustParse("1000", "USD"))
	require.NoError(t, err)
	assert.Equal(t, asset.MethodNone, land.DepreciationMethod())
}

func TestCatalog_AccountGroups(t *testing.T) {
	assert.Equal(t, "250", asset.AccountGroup(asset.CategoryLand))
	assert.Equal(t, "252", asset.AccountGroup(asset.CategoryBuildings))
	assert.Equal(t, "254", asset.AccountGroup(asset.CategoryVehicles))
	assert.Equal(t, "260", asset.AccountGroup(asset.CategoryIntangibleRights))
	assert.Equal(t, "261", asset.AccountGroup(asset.CategoryPatents))
	assert.Equal(t, "262", asset.AccountGroup(asset.CategoryGoodwill))
	assert.Equal(t, "267", asset.AccountGroup(asset.CategorySoftware))
	assert.Equal(t, asset.Intangible, asset.CategoryType(asset.CategorySoftware))
	assert.Equal(t, asset.Tangible, asset.CategoryType(asset.CategoryVehicles))
}

// =============================================================================
// CONFIGURATION
// =============================================================================

func TestSetSalvageValue_CurrencyMismatch_Rejected(t *testing.T) {
	a := newMachine(t)
	err := a.SetSalvageValue(money.MustParse("100", "EUR"))
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestSetSalvageValue_ConflictWithPostedDepreciation_Rejected(t *testing.T) {
	// GIVEN: A machine with one month of depreciation applied
	// WHEN: Raising salvage so the depreciable amount drops below what is
	//       already accumulated
	// THEN: The change is rejected and the old salvage stands

	a := newMachine(t)
	_, err := a.ApplyPeriod(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	err = a.SetSalvageValue(money.MustParse("119000.00", "USD"))
	assert.ErrorIs(t, err, asset.ErrConfigurationConflict)
	assert.True(t, a.SalvageValue().Equal(money.MustParse("20000.00", "USD")))
	assert.NoError(t, a.Validate())
}

func TestSetDepreciationMethod_AfterPostings_FutureFollowsNewConfig(t *testing.T) {
	a := newMachine(t)
	_, err := a.ApplyPeriod(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	accumulated := a.AccumulatedDepreciation()

	require.NoError(t, a.SetDepreciationMethod(asset.DoubleDecliningBalance, 4, nil))

	// Accumulated total stands; only future periods change
	assert.True(t, a.AccumulatedDepreciation().Equal(accumulated))
	assert.Equal(t, asset.DoubleDecliningBalance, a.DepreciationMethod())
	assert.Equal(t, 4, a.UsefulLifeYears())
}

func TestSetDepreciationPeriod_UnknownGranularity_Rejected(t *testing.T) {
	a := newMachine(t)
	assert.ErrorIs(t, a.SetDepreciationPeriod("weekly"), asset.ErrInvalidDepreciationMethod)
}

func TestSetTotalExpectedUnits_MustBePositive(t *testing.T) {
	a := newMachine(t)
	assert.ErrorIs(t, a.SetTotalExpectedUnits(decimal.Zero), asset.ErrInvalidDepreciationMethod)
	assert.NoError(t, a.SetTotalExpectedUnits(decimal.NewFromInt(100000)))
}

// =============================================================================
// COST ADDITIONS
// =============================================================================

func TestAddToCost_RaisesCostAndNetBookValue(t *testing.T) {
	a := newMachine(t)

	err := a.AddToCost(money.MustParse("5000.00", "USD"), "new tooling", acquired)
	require.NoError(t, err)

	assert.Equal(t, "125000.00 USD", a.CostValue().String())
	assert.Equal(t, "125000.00 USD", a.NetBookValue().String())
	assert.Len(t, a.CostAdditions(), 1)
	assert.NoError(t, a.Validate())
}

func TestAddToCost_NonPositive_Rejected(t *testing.T) {
	a := newMachine(t)
	assert.ErrorIs(t, a.AddToCost(money.Zero("USD"), "", acquired), asset.ErrInvalidCostAddition)
	assert.ErrorIs(t, a.AddToCost(money.MustParse("-1", "USD"), "", acquired), asset.ErrInvalidCostAddition)
}

func TestAddToCost_CurrencyMismatch_Rejected(t *testing.T) {
	a := newMachine(t)
	assert.ErrorIs(t, a.AddToCost(money.MustParse("100", "EUR"), "", acquired), money.ErrCurrencyMismatch)
}

// =============================================================================
// LIFECYCLE STATE MACHINE
// =============================================================================

func TestLifecycle_MaintenanceRoundTrip(t *testing.T) {
	a := newMachine(t)
	require.Equal(t, asset.StatusInService, a.Status())

	require.NoError(t, a.MarkUnderMaintenance())
	assert.Equal(t, asset.StatusUnderMaintenance, a.Status())

	require.NoError(t, a.ReturnFromMaintenance())
	assert.Equal(t, asset.StatusInService, a.Status())
}

func TestLifecycle_MaintenanceFromAcquired_Rejected(t *testing.T) {
	a, err := asset.New("a1", "C-1", "Thing", asset.Tangible,
		asset.CategoryMachineryEquipment, acquired,
		money.MustParse("1000", "USD"), 5, asset.StraightLine)
	require.NoError(t, err)

	err = a.MarkUnderMaintenance()
	assert.ErrorIs(t, err, asset.ErrInvalidTransition)

	var trans *asset.TransitionError
	require.ErrorAs(t, err, &trans)
	assert.Equal(t, asset.StatusAcquired, trans.From)
	assert.Equal(t, asset.StatusUnderMaintenance, trans.To)
}

func TestLifecycle_DisposedIsTerminal(t *testing.T) {
	// GIVEN: A scrapped machine
	// WHEN: Any mutation is attempted
	// THEN: Every operation fails with ErrAssetDisposed

	a := newMachine(t)
	_, err := a.Scrap(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), "worn out")
	require.NoError(t, err)
	require.Equal(t, asset.StatusDisposed, a.Status())

	assert.ErrorIs(t, a.SetSalvageValue(money.Zero("USD")), asset.ErrAssetDisposed)
	assert.ErrorIs(t, a.AddToCost(money.MustParse("1", "USD"), "", acquired), asset.ErrAssetDisposed)
	assert.ErrorIs(t, a.MarkOutOfService(), asset.ErrAssetDisposed)
	assert.ErrorIs(t, a.MarkLost(), asset.ErrAssetDisposed)
	assert.ErrorIs(t, a.PlaceInService(acquired), asset.ErrAssetDisposed)

	_, err = a.ApplyPeriod(time.Now(), nil)
	assert.ErrorIs(t, err, asset.ErrAssetDisposed)

	_, err = a.Revalue(money.MustParse("50000", "USD"), time.Now(), "")
	assert.ErrorIs(t, err, asset.ErrAssetDisposed)

	_, err = a.Scrap(time.Now(), "again")
	assert.ErrorIs(t, err, asset.ErrAlreadyDisposed)
}

func TestLifecycle_LostAndOutOfServiceFromAnyActiveState(t *testing.T) {
	a := newMachine(t)
	require.NoError(t, a.MarkOutOfService())
	assert.Equal(t, asset.StatusOutOfService, a.Status())

	// Back in service, then lost
	require.NoError(t, a.PlaceInService(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, a.MarkLost())
	assert.Equal(t, asset.StatusLost, a.Status())
}

// =============================================================================
// SNAPSHOT ROUND-TRIP
// =============================================================================

func TestSnapshot_RoundTripPreservesState(t *testing.T) {
	a := newMachine(t)
	_, err := a.ApplyPeriod(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	require.NoError(t, a.AddToCost(money.MustParse("2500.00", "USD"), "upgrade", acquired))

	restored, err := asset.FromSnapshot(a.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, a.ID(), restored.ID())
	assert.Equal(t, a.Status(), restored.Status())
	assert.True(t, a.CostValue().Equal(restored.CostValue()))
	assert.True(t, a.AccumulatedDepreciation().Equal(restored.AccumulatedDepreciation()))
	assert.True(t, a.NetBookValue().Equal(restored.NetBookValue()))
	assert.Equal(t, a.Records(), restored.Records())
	assert.Equal(t, a.CostAdditions(), restored.CostAdditions())
}

func TestFromSnapshot_CorruptState_Rejected(t *testing.T) {
	// A stored row where NBV != cost - accumulated must never load.
	a := newMachine(t)
	snap := a.Snapshot()
	snap.NetBookValue = money.MustParse("1.00", "USD")

	_, err := asset.FromSnapshot(snap)
	assert.Error(t, err)
}
