package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/asset-engine/asset"
	"github.com/warp/asset-engine/money"
	"github.com/warp/asset-engine/store/sqlite"
)

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newPress(t *testing.T, id asset.ID, code string) *asset.FixedAsset {
	t.Helper()
	a, err := asset.NewMachinery(id, code, "Hydraulic Press",
		time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		money.MustParse("120000.00", "USD"))
	require.NoError(t, err)
	require.NoError(t, a.SetSalvageValue(money.MustParse("20000.00", "USD")))
	require.NoError(t, a.SetDepreciationMethod(asset.StraightLine, 5, nil))
	a.SetSerialNumber("HP-2024-0042")
	a.SetLocation("plant-1")
	return a
}

// =============================================================================
// CREATE / GET
// =============================================================================

func TestSQLite_CreateAndGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newPress(t, "a1", "MCH-001")))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "MCH-001", got.Code())
	assert.Equal(t, "Hydraulic Press", got.Name())
	assert.Equal(t, asset.StatusAcquired, got.Status())
	assert.Equal(t, "120000.00 USD", got.CostValue().String())
	assert.Equal(t, "20000.00 USD", got.SalvageValue().String())
	assert.Equal(t, asset.StraightLine, got.DepreciationMethod())
	assert.Equal(t, "253", got.ChartAccountGroup())
	assert.Equal(t, "HP-2024-0042", got.SerialNumber())
	assert.Equal(t, "plant-1", got.Location())
	assert.Empty(t, got.Custodian())
	assert.NoError(t, got.Validate())
}

func TestSQLite_DuplicateCode_Rejected(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newPress(t, "a1", "MCH-001")))
	err := repo.Create(ctx, newPress(t, "a2", "MCH-001"))
	assert.ErrorIs(t, err, asset.ErrCodeTaken)

	// The first row is untouched
	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "MCH-001", got.Code())
}

func TestSQLite_Get_Unknown(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, asset.ErrNotFound)

	_, err = repo.GetByCode(context.Background(), "MCH-404")
	assert.ErrorIs(t, err, asset.ErrNotFound)
}

// =============================================================================
// SAVE - Full aggregate round trip
// =============================================================================

func TestSQLite_SaveRoundTripsFullHistory(t *testing.T) {
	// GIVEN: An asset with depreciation history, a cost addition, a
	//        revaluation and configuration overrides
	// WHEN: Saved and reloaded
	// THEN: Every piece of state survives and the invariants revalidate

	repo := newRepo(t)
	ctx := context.Background()

	a := newPress(t, "a1", "MCH-001")
	require.NoError(t, repo.Create(ctx, a))

	require.NoError(t, a.PlaceInService(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))
	for m := time.February; m <= time.April; m++ {
		_, err := a.ApplyPeriod(time.Date(2024, m, 10, 0, 0, 0, 0, time.UTC), nil)
		require.NoError(t, err)
	}
	require.NoError(t, a.MarkPeriodPosted("2024-02"))
	require.NoError(t, a.AddToCost(money.MustParse("5000.00", "USD"), "new tooling",
		time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)))
	_, err := a.Revalue(money.MustParse("118000.00", "USD"),
		time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), "appraisal")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)

	assert.Equal(t, asset.StatusInService, got.Status())
	assert.True(t, got.CostValue().Equal(a.CostValue()))
	assert.True(t, got.AccumulatedDepreciation().Equal(a.AccumulatedDepreciation()))
	assert.True(t, got.NetBookValue().Equal(a.NetBookValue()))

	require.Len(t, got.Records(), 3)
	assert.Equal(t, "2024-02", got.Records()[0].Period)
	assert.True(t, got.Records()[0].IsPosted)
	assert.False(t, got.Records()[1].IsPosted)

	require.Len(t, got.CostAdditions(), 1)
	assert.Equal(t, "new tooling", got.CostAdditions()[0].Description)

	require.NotNil(t, got.LastRevaluation())
	assert.Equal(t, "appraisal", got.LastRevaluation().Reason)
	assert.True(t, got.LastRevaluation().Amount.Equal(a.LastRevaluation().Amount))

	assert.NoError(t, got.Validate())
}

func TestSQLite_SaveRoundTripsDisposal(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	a := newPress(t, "a1", "MCH-001")
	require.NoError(t, repo.Create(ctx, a))

	out, err := a.Sell(time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC),
		money.MustParse("95000.00", "USD"), "Acme Corp", "INV-009")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got.Disposal())
	assert.Equal(t, asset.DisposalSale, got.Disposal().Type)
	assert.Equal(t, "Acme Corp", got.Disposal().Buyer)
	assert.Equal(t, "INV-009", got.Disposal().InvoiceRef)
	assert.True(t, got.Disposal().GainLoss.Equal(out.GainLoss))
	require.NotNil(t, got.Disposal().SaleAmount)
	assert.Equal(t, "95000.00 USD", got.Disposal().SaleAmount.String())
	assert.Equal(t, asset.StatusDisposed, got.Status())
}

func TestSQLite_SaveRoundTripsUnitsConfig(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	a := newPress(t, "a1", "MCH-001")
	require.NoError(t, a.SetDepreciationMethod(asset.UnitsOfProduction, 10, nil))
	require.NoError(t, a.SetTotalExpectedUnits(decimal.NewFromInt(100000)))
	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, asset.UnitsOfProduction, got.DepreciationMethod())
	assert.True(t, got.TotalExpectedUnits().Equal(decimal.NewFromInt(100000)))
}

func TestSQLite_Save_Unknown_Rejected(t *testing.T) {
	repo := newRepo(t)
	err := repo.Save(context.Background(), newPress(t, "ghost", "MCH-404"))
	assert.ErrorIs(t, err, asset.ErrNotFound)
}

// =============================================================================
// LIST
// =============================================================================

func TestSQLite_List_FiltersAndOrders(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	m1 := newPress(t, "a1", "MCH-002")
	m2 := newPress(t, "a2", "MCH-001")
	require.NoError(t, m2.PlaceInService(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))
	land, err := asset.NewLand("a3", "LND-001", "Plot",
		time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		money.MustParse("500000.00", "USD"))
	require.NoError(t, err)

	for _, a := range []*asset.FixedAsset{m1, m2, land} {
		require.NoError(t, repo.Create(ctx, a))
	}

	all, err := repo.List(ctx, asset.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "LND-001", all[0].Code())
	assert.Equal(t, "MCH-001", all[1].Code())
	assert.Equal(t, "MCH-002", all[2].Code())

	inService := asset.StatusInService
	active, err := repo.List(ctx, asset.ListFilter{Status: &inService})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "MCH-001", active[0].Code())

	machinery := asset.CategoryMachineryEquipment
	machines, err := repo.List(ctx, asset.ListFilter{Category: &machinery})
	require.NoError(t, err)
	assert.Len(t, machines, 2)
}

// =============================================================================
// DELETE
// =============================================================================

func TestSQLite_Delete_GuardedByHistory(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	a := newPress(t, "a1", "MCH-001")
	require.NoError(t, repo.Create(ctx, a))

	require.NoError(t, a.PlaceInService(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))
	_, err := a.ApplyPeriod(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, a))

	assert.ErrorIs(t, repo.Delete(ctx, "a1"), asset.ErrHasHistory)

	// A disposed asset is history too, even with no records
	b := newPress(t, "b1", "MCH-002")
	require.NoError(t, repo.Create(ctx, b))
	_, err = b.Scrap(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, b))
	assert.ErrorIs(t, repo.Delete(ctx, "b1"), asset.ErrHasHistory)
}

func TestSQLite_Delete_FreesCode(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newPress(t, "a1", "MCH-001")))
	require.NoError(t, repo.Delete(ctx, "a1"))

	_, err := repo.Get(ctx, "a1")
	assert.ErrorIs(t, err, asset.ErrNotFound)

	require.NoError(t, repo.Create(ctx, newPress(t, "a2", "MCH-001")))
}

func TestSQLite_Delete_Unknown(t *testing.T) {
	repo := newRepo(t)
	assert.ErrorIs(t, repo.Delete(context.Background(), "nope"), asset.ErrNotFound)
}
