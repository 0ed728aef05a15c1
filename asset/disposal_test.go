package asset_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/asset-engine/asset"
	"github.com/warp/asset-engine/money"
)

// newDepreciatedMachine returns a 100k USD straight-line machine on annual
// periods with two years applied, leaving a net book value of exactly 60k.
func newDepreciatedMachine(t *testing.T) *asset.FixedAsset {
	t.Helper()
	start := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	a, err := asset.New("asset-1", "MCH-001", "Hydraulic Press",
		asset.Tangible, asset.CategoryMachineryEquipment,
		start, money.MustParse("100000.00", "USD"), 5, asset.StraightLine)
	require.NoError(t, err)
	require.NoError(t, a.SetDepreciationPeriod(asset.Annually))
	require.NoError(t, a.PlaceInService(start))
	for year := 2022; year <= 2023; year++ {
		_, err := a.ApplyPeriod(time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC), nil)
		require.NoError(t, err)
	}
	require.Equal(t, "60000.00 USD", a.NetBookValue().String())
	return a
}

// =============================================================================
// SALE
// =============================================================================

func TestSell_GainAgainstNetBookValue(t *testing.T) {
	// GIVEN: A machine with a 60k net book value
	// WHEN: It sells for 70k
	// THEN: A 10k gain is realized and the asset is disposed

	a := newDepreciatedMachine(t)
	saleDate := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	out, err := a.Sell(saleDate, money.MustParse("70000.00", "USD"), "Acme Corp", "INV-2024-017")
	require.NoError(t, err)

	assert.Equal(t, asset.DisposalSale, out.Type)
	assert.Equal(t, "10000.00 USD", out.GainLoss.String())
	assert.Equal(t, "70000.00 USD", out.SaleAmount.String())
	assert.Equal(t, "Acme Corp", out.Buyer)
	assert.Equal(t, "INV-2024-017", out.InvoiceRef)
	assert.Equal(t, saleDate, out.Date)
	assert.Equal(t, asset.StatusDisposed, a.Status())
	require.NotNil(t, a.Disposal())
}

func TestSell_BelowBook_RealizesLoss(t *testing.T) {
	a := newDepreciatedMachine(t)

	out, err := a.Sell(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		money.MustParse("45000.00", "USD"), "Acme Corp", "")
	require.NoError(t, err)
	assert.Equal(t, "-15000.00 USD", out.GainLoss.String())
}

func TestSell_MissingOrNonPositiveAmount_Rejected(t *testing.T) {
	a := newDepreciatedMachine(t)

	_, err := a.Sell(time.Now(), money.Zero("USD"), "", "")
	assert.ErrorIs(t, err, asset.ErrSaleAmountRequired)

	_, err = a.Sell(time.Now(), money.MustParse("-10", "USD"), "", "")
	assert.ErrorIs(t, err, asset.ErrSaleAmountRequired)

	// Nothing was disposed by the rejected attempts
	assert.Equal(t, asset.StatusInService, a.Status())
}

func TestSell_CurrencyMismatch_Rejected(t *testing.T) {
	a := newDepreciatedMachine(t)

	_, err := a.Sell(time.Now(), money.MustParse("70000", "EUR"), "", "")
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

// =============================================================================
// SCRAP / TRANSFER / OTHER FLOWS
// =============================================================================

func TestScrap_WritesOffRemainingBookValue(t *testing.T) {
	a := newDepreciatedMachine(t)

	out, err := a.Scrap(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), "beyond repair")
	require.NoError(t, err)

	assert.Equal(t, asset.DisposalScrap, out.Type)
	assert.Equal(t, "-60000.00 USD", out.GainLoss.String())
	assert.Nil(t, out.SaleAmount)
	assert.Equal(t, "beyond repair", out.Reason)
}

func TestTransfer_RealizesExactlyZero(t *testing.T) {
	a := newDepreciatedMachine(t)

	out, err := a.Transfer(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		"plant-2", "line consolidation")
	require.NoError(t, err)

	assert.Equal(t, asset.DisposalTransfer, out.Type)
	assert.True(t, out.GainLoss.IsZero())
	assert.Equal(t, "plant-2", out.Buyer)
	assert.Equal(t, asset.StatusDisposed, a.Status())
}

func TestDispose_InsuranceClaim_ProceedsAgainstBook(t *testing.T) {
	a := newDepreciatedMachine(t)
	payout := money.MustParse("55000.00", "USD")

	out, err := a.Dispose(asset.DisposalInsuranceClaim,
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), &payout, "fire damage")
	require.NoError(t, err)
	assert.Equal(t, "-5000.00 USD", out.GainLoss.String())
}

func TestDispose_LostStolen_FullWriteOff(t *testing.T) {
	a := newDepreciatedMachine(t)

	out, err := a.Dispose(asset.DisposalLostStolen,
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), nil, "stolen from site")
	require.NoError(t, err)
	assert.Equal(t, "-60000.00 USD", out.GainLoss.String())
}

// =============================================================================
// GUARDS
// =============================================================================

func TestDispose_BeforeAcquisition_Rejected(t *testing.T) {
	a := newDepreciatedMachine(t) // acquired Jan 1 2022

	_, err := a.Scrap(time.Date(2021, time.December, 31, 0, 0, 0, 0, time.UTC), "")
	assert.ErrorIs(t, err, asset.ErrDisposalDateBeforeAcquisition)

	var dateErr *asset.DisposalDateError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, asset.ID("asset-1"), dateErr.AssetID)
	assert.Equal(t, asset.StatusInService, a.Status())
}

func TestDispose_Twice_Rejected(t *testing.T) {
	a := newDepreciatedMachine(t)
	date := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	_, err := a.Scrap(date, "worn")
	require.NoError(t, err)

	_, err = a.Transfer(date, "plant-2", "")
	assert.ErrorIs(t, err, asset.ErrAlreadyDisposed)

	// The original outcome survives the rejected second attempt
	assert.Equal(t, asset.DisposalScrap, a.Disposal().Type)
}
