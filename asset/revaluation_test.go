package asset_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/asset-engine/asset"
	"github.com/warp/asset-engine/money"
)

var appraisalDate = time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC)

// =============================================================================
// REVALUATION
// =============================================================================

func TestRevalue_Upward_DeltaAbsorbedIntoCost(t *testing.T) {
	// GIVEN: A machine with one month applied (NBV 118333.33 on 120k cost)
	// WHEN: It is appraised at 130000.00
	// THEN: The +11666.67 delta lands in costValue, NBV equals the target,
	//       and accumulated depreciation is untouched

	a := newMachine(t)
	_, err := a.ApplyPeriod(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	require.Equal(t, "118333.33 USD", a.NetBookValue().String())

	res, err := a.Revalue(money.MustParse("130000.00", "USD"), appraisalDate, "market appraisal")
	require.NoError(t, err)

	assert.Equal(t, "11666.67 USD", res.RevaluationAmount.String())
	assert.Equal(t, "131666.67 USD", res.NewCostValue.String())
	assert.Equal(t, "130000.00 USD", res.NewNetBookValue.String())
	assert.Equal(t, appraisalDate, res.Date)

	assert.Equal(t, "131666.67 USD", a.CostValue().String())
	assert.Equal(t, "130000.00 USD", a.NetBookValue().String())
	assert.Equal(t, "1666.67 USD", a.AccumulatedDepreciation().String())
	assert.NoError(t, a.Validate())

	require.NotNil(t, a.LastRevaluation())
	assert.Equal(t, "market appraisal", a.LastRevaluation().Reason)
}

func TestRevalue_Downward_NegativeDelta(t *testing.T) {
	a := newMachine(t)

	res, err := a.Revalue(money.MustParse("95000.00", "USD"), appraisalDate, "impairment")
	require.NoError(t, err)

	assert.Equal(t, "-25000.00 USD", res.RevaluationAmount.String())
	assert.Equal(t, "95000.00 USD", a.CostValue().String())
	assert.Equal(t, "95000.00 USD", a.NetBookValue().String())
	assert.NoError(t, a.Validate())
}

func TestRevalue_BelowSalvageFloor_Rejected(t *testing.T) {
	a := newMachine(t) // salvage 20000

	_, err := a.Revalue(money.MustParse("15000.00", "USD"), appraisalDate, "")
	assert.ErrorIs(t, err, asset.ErrInvalidRevaluation)

	var revErr *asset.RevaluationError
	require.ErrorAs(t, err, &revErr)
	assert.Equal(t, "15000.00 USD", revErr.Target.String())

	// Rejected appraisal leaves the asset untouched
	assert.Equal(t, "120000.00 USD", a.CostValue().String())
	assert.Nil(t, a.LastRevaluation())
}

func TestRevalue_NoOpTarget_Rejected(t *testing.T) {
	a := newMachine(t)

	_, err := a.Revalue(money.MustParse("120000.00", "USD"), appraisalDate, "")
	assert.ErrorIs(t, err, asset.ErrInvalidRevaluation)
}

func TestRevalue_CurrencyMismatch_Rejected(t *testing.T) {
	a := newMachine(t)

	_, err := a.Revalue(money.MustParse("130000.00", "EUR"), appraisalDate, "")
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestRevalue_FutureDepreciationSeesAdjustedBasis(t *testing.T) {
	// After revaluing up, the straight-line charge recomputes from the new
	// depreciable amount for the remaining schedule.
	a := newMachine(t)

	_, err := a.Revalue(money.MustParse("140000.00", "USD"), appraisalDate, "")
	require.NoError(t, err)

	// depreciable is now 120000; 120000/60 = 2000 per month
	rec, err := asset.ComputePeriod(a, time.Date(2024, time.October, 10, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Equal(t, "2000.00 USD", rec.DepreciationAmount.String())
}
