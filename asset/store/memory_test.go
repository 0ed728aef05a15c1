package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/asset-engine/asset"
	"github.com/warp/asset-engine/asset/store"
	"github.com/warp/asset-engine/money"
)

func newAsset(t *testing.T, id asset.ID, code string) *asset.FixedAsset {
	t.Helper()
	a, err := asset.NewMachinery(id, code, "Press",
		time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		money.MustParse("120000.00", "USD"))
	require.NoError(t, err)
	return a
}

// =============================================================================
// CREATE / GET
// =============================================================================

func TestMemory_CreateAndGet(t *testing.T) {
	repo := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAsset(t, "a1", "MCH-001")))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "MCH-001", got.Code())
	assert.Equal(t, asset.StatusAcquired, got.Status())

	byCode, err := repo.GetByCode(ctx, "MCH-001")
	require.NoError(t, err)
	assert.Equal(t, got.ID(), byCode.ID())
}

func TestMemory_DuplicateCode_Rejected(t *testing.T) {
	repo := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAsset(t, "a1", "MCH-001")))
	err := repo.Create(ctx, newAsset(t, "a2", "MCH-001"))
	assert.ErrorIs(t, err, asset.ErrCodeTaken)
}

func TestMemory_Get_Unknown(t *testing.T) {
	repo := store.NewMemory()

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, asset.ErrNotFound)

	_, err = repo.GetByCode(context.Background(), "nope")
	assert.ErrorIs(t, err, asset.ErrNotFound)
}

// =============================================================================
// SAVE
// =============================================================================

func TestMemory_SaveRoundTripsHistory(t *testing.T) {
	repo := store.NewMemory()
	ctx := context.Background()

	a := newAsset(t, "a1", "MCH-001")
	require.NoError(t, repo.Create(ctx, a))

	require.NoError(t, a.PlaceInService(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))
	_, err := a.ApplyPeriod(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, asset.StatusInService, got.Status())
	require.Len(t, got.Records(), 1)
	assert.Equal(t, "2024-02", got.Records()[0].Period)
	assert.True(t, got.AccumulatedDepreciation().Equal(a.AccumulatedDepreciation()))
}

func TestMemory_Save_Unknown_Rejected(t *testing.T) {
	repo := store.NewMemory()
	err := repo.Save(context.Background(), newAsset(t, "ghost", "MCH-404"))
	assert.ErrorIs(t, err, asset.ErrNotFound)
}

func TestMemory_StoredStateIsIsolated(t *testing.T) {
	// Mutating the aggregate after Create must not leak into the store.
	repo := store.NewMemory()
	ctx := context.Background()

	a := newAsset(t, "a1", "MCH-001")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, a.PlaceInService(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, asset.StatusAcquired, got.Status())
}

// =============================================================================
// LIST
// =============================================================================

func TestMemory_List_FiltersAndOrders(t *testing.T) {
	repo := store.NewMemory()
	ctx := context.Background()

	m1 := newAsset(t, "a1", "MCH-002")
	m2 := newAsset(t, "a2", "MCH-001")
	require.NoError(t, m2.PlaceInService(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))
	land, err := asset.NewLand("a3", "LND-001",
		"Plot", time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		money.MustParse("500000.00", "USD"))
	require.NoError(t, err)

	for _, a := range []*asset.FixedAsset{m1, m2, land} {
		require.NoError(t, repo.Create(ctx, a))
	}

	all, err := repo.List(ctx, asset.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Ordered by code
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

func TestMemory_Delete_GuardedByHistory(t *testing.T) {
	repo := store.NewMemory()
	ctx := context.Background()

	a := newAsset(t, "a1", "MCH-001")
	require.NoError(t, repo.Create(ctx, a))

	require.NoError(t, a.PlaceInService(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))
	_, err := a.ApplyPeriod(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, a))

	assert.ErrorIs(t, repo.Delete(ctx, "a1"), asset.ErrHasHistory)
}

func TestMemory_Delete_FreesCode(t *testing.T) {
	repo := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAsset(t, "a1", "MCH-001")))
	require.NoError(t, repo.Delete(ctx, "a1"))

	_, err := repo.Get(ctx, "a1")
	assert.ErrorIs(t, err, asset.ErrNotFound)

	// Code is reusable after delete
	require.NoError(t, repo.Create(ctx, newAsset(t, "a2", "MCH-001")))
}
